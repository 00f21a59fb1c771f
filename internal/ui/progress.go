// Package ui renders the per-file status of a run in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	prog "tidy/internal/progress"
)

type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateChecking
	stateFixing
	stateDone
	stateCached
	stateFailed
)

type stateInfo struct {
	label  string
	weight float64 // share of the file counted as finished
	active bool
	style  lipgloss.Style
}

var (
	styleIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleBusy   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
)

var states = []stateInfo{
	stateQueued:   {label: "queued", style: styleIdle},
	stateLoading:  {label: "loading", weight: 0.25, active: true, style: styleBusy},
	stateChecking: {label: "checking", weight: 0.5, active: true, style: styleBusy},
	stateFixing:   {label: "fixing", weight: 0.75, active: true, style: styleBusy},
	stateDone:     {label: "done", weight: 1, style: styleOK},
	stateCached:   {label: "cached", weight: 1, style: styleOK},
	stateFailed:   {label: "error", weight: 1, active: true, style: styleFailed},
}

func (s fileState) String() string { return states[s].label }

// defaultMaxRows bounds the file list; longer runs show active files only.
const defaultMaxRows = 16

type progressModel struct {
	title   string
	events  <-chan prog.Event
	spinner spinner.Model
	bar     progress.Model
	items   []fileItem
	index   map[string]int
	stage   string
	width   int
	maxRows int
	done    bool
}

type fileItem struct {
	path     string
	state    fileState
	findings int
}

type eventMsg prog.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model showing the state of files.
// The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan prog.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleBusy

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		items:   make([]fileItem, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
		maxRows: defaultMaxRows,
	}
	for i, file := range files {
		m.items[i] = fileItem{path: file}
		m.index[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(prog.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.stage != "" {
		header += " (" + m.stage + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-24, 20)
	rows, hidden := m.visibleRows()
	for _, item := range rows {
		info := states[item.state]
		fmt.Fprintf(&b, "  %s %s", info.style.Render(fmt.Sprintf("%9s", info.label)), truncate(item.path, nameWidth))
		if item.findings > 0 {
			fmt.Fprintf(&b, "  (%d)", item.findings)
		}
		b.WriteByte('\n')
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  ... %d more\n", hidden)
	}

	b.WriteByte('\n')
	b.WriteString(m.summary())
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// visibleRows returns the rows to draw and the number left out. Runs longer
// than maxRows list only files that are in progress or failed.
func (m *progressModel) visibleRows() ([]fileItem, int) {
	if len(m.items) <= m.maxRows {
		return m.items, 0
	}
	var rows []fileItem
	for _, item := range m.items {
		if states[item.state].active && len(rows) < m.maxRows {
			rows = append(rows, item)
		}
	}
	return rows, len(m.items) - len(rows)
}

func (m *progressModel) summary() string {
	var finished, cached, failed, findings int
	for _, item := range m.items {
		switch item.state {
		case stateDone:
			finished++
		case stateCached:
			finished++
			cached++
		case stateFailed:
			finished++
			failed++
		}
		findings += item.findings
	}
	s := fmt.Sprintf("%d/%d files, %d findings", finished, len(m.items), findings)
	if cached > 0 {
		s += fmt.Sprintf(", %d cached", cached)
	}
	if failed > 0 {
		s += ", " + styleFailed.Render(fmt.Sprintf("%d failed", failed))
	}
	return s
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// applyEvent records ev. Events without a file name the stage of the run.
func (m *progressModel) applyEvent(ev prog.Event) tea.Cmd {
	state, ok := stateOf(ev)
	if ev.File == "" {
		if ok {
			m.stage = state.String()
		}
		return nil
	}
	idx, known := m.index[ev.File]
	if !known || !ok {
		return nil
	}
	m.items[idx].state = state
	if ev.Status == prog.StatusDone {
		m.items[idx].findings = ev.Findings
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		total += states[item.state].weight
	}
	return total / float64(len(m.items))
}

func stateOf(ev prog.Event) (fileState, bool) {
	switch ev.Status {
	case prog.StatusQueued:
		return stateQueued, true
	case prog.StatusDone:
		if ev.Cached {
			return stateCached, true
		}
		return stateDone, true
	case prog.StatusError:
		return stateFailed, true
	case prog.StatusWorking:
		switch ev.Stage {
		case prog.StageLoad:
			return stateLoading, true
		case prog.StageCheck:
			return stateChecking, true
		case prog.StageFix:
			return stateFixing, true
		}
	}
	return 0, false
}

func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
