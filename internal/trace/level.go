package trace

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota
	LevelError        // driver events only, kept for the ring dump
	LevelPhase        // driver + pass boundaries
	LevelDetail       // per-unit events
	LevelDebug        // per-check events
)

var levelNames = []string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// finest is the finest scope each level lets through.
var finest = []Scope{
	LevelOff:    0,
	LevelError:  ScopeDriver,
	LevelPhase:  ScopePass,
	LevelDetail: ScopeUnit,
	LevelDebug:  ScopeCheck,
}

func (l Level) String() string { return nameOf(levelNames, l) }

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	return parseName[Level]("level", levelNames, nil, s)
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(finest) {
		return false
	}
	return scope != 0 && scope <= finest[l]
}
