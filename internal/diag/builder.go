package diag

// New starts a diagnostic with the given primary message.
func New(sev Severity, check string, msg Message) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Check:    check,
		Message:  msg,
	}
}

// NewWarning is a shortcut for SevWarning diagnostics.
func NewWarning(check string, msg Message) Diagnostic {
	return New(SevWarning, check, msg)
}

func (d Diagnostic) WithNote(msg Message) Diagnostic {
	d.Notes = append(d.Notes, msg)
	return d
}

// WithEdits appends edits, skipping ones already attached.
func (d Diagnostic) WithEdits(edits ...Edit) Diagnostic {
	d.Edits = AppendUnique(d.Edits, edits...)
	return d
}

// AppendUnique appends every edit of add not already present in dst.
func AppendUnique(dst []Edit, add ...Edit) []Edit {
outer:
	for _, e := range add {
		for _, have := range dst {
			if have == e {
				continue outer
			}
		}
		dst = append(dst, e)
	}
	return dst
}
