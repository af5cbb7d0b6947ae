package rcs

import "fmt"

// MalformedInput is returned when the parser cannot recognise the RCS
// grammar: a required keyword or ';' is missing, or a string is
// unterminated. Revision numbers are taken as any bare word; their syntax
// is not checked.
type MalformedInput struct {
	Pos     int
	Message string
}

func (e *MalformedInput) Error() string {
	return fmt.Sprintf("malformed RCS input at byte %d: %s", e.Pos, e.Message)
}

// UnknownRevision is returned when a query names a revision not present
// in the model.
type UnknownRevision struct {
	Revision Revision
}

func (e *UnknownRevision) Error() string {
	return fmt.Sprintf("unknown revision %q", string(e.Revision))
}

// BadFormat is returned when a grep format string contains a directive
// character not in the supported set.
type BadFormat struct {
	Directive byte
}

func (e *BadFormat) Error() string {
	return fmt.Sprintf("bad format directive %q", string(e.Directive))
}

// DuplicateRevision is returned when the parser sees two deltas, or two
// delta texts, with the same revision number. rcsfile.py documents this
// case as "crash and burn"; this implementation reports it instead.
type DuplicateRevision struct {
	Revision Revision
	Section  string // "delta" or "deltatext"
}

func (e *DuplicateRevision) Error() string {
	return fmt.Sprintf("duplicate %s for revision %q", e.Section, string(e.Revision))
}
