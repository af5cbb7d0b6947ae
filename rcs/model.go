package rcs

import (
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"
)

// File wraps the parser's output with revision-indexed lookups. It is
// read-only after construction, so a single File may safely back multiple
// concurrent Grep calls as long as each call owns its own match list.
type File struct {
	filename   string
	admin      Admin
	deltas     map[Revision]Delta
	deltaOrder []Revision
	deltatexts map[Revision]DeltaText
	desc       string

	// Logger receives broken-chain warnings and a warning when a head
	// revision's content looks binary rather than text. Defaults to a
	// stderr logger at InfoLevel; callers may replace it.
	Logger *logrus.Logger
}

// New builds a File from an in-memory RCS file buffer.
func New(data []byte, filename string) (*File, error) {
	raw, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return newFromRaw(raw, filename)
}

// NewFromReader builds a File by reading r fully into memory first, as the
// grammar requires (no streaming parse).
func NewFromReader(r io.Reader, filename string) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(data, filename)
}

// NewFromPath builds a File from a filesystem path, using the path itself
// as the model's reported filename (see Filename).
func NewFromPath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(data, path)
}

func newFromRaw(raw *RawFile, filename string) (*File, error) {
	f := &File{
		filename:   filename,
		admin:      raw.Admin,
		deltas:     make(map[Revision]Delta, len(raw.Deltas)),
		deltatexts: make(map[Revision]DeltaText, len(raw.DeltaTexts)),
		desc:       raw.Desc,
		Logger:     defaultLogger(),
	}
	for _, d := range raw.Deltas {
		f.deltas[d.Deltanum] = d
		f.deltaOrder = append(f.deltaOrder, d.Deltanum)
	}
	for _, dt := range raw.DeltaTexts {
		f.deltatexts[dt.Deltanum] = dt
	}

	// Every deltanum in deltas should appear in deltatexts and vice versa.
	// Violations are warnings, not fatal: a file missing its text for some
	// delta can still answer metadata queries about that revision.
	for _, r := range f.deltaOrder {
		if _, ok := f.deltatexts[r]; !ok {
			f.Logger.Warnf("rcs: delta %s has no matching delta text", r)
		}
	}
	for r := range f.deltatexts {
		if _, ok := f.deltas[r]; !ok {
			f.Logger.Warnf("rcs: delta text %s has no matching delta", r)
		}
	}

	if head := f.admin.Head; head != "" {
		if dt, ok := f.deltatexts[head]; ok && looksBinary(dt.Text) {
			f.Logger.Warnf("rcs: head revision %s looks like binary content; grep will scan it as raw bytes", head)
		}
	}

	return f, nil
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.SetLevel(logrus.InfoLevel)
	return l
}

// looksBinary sniffs the first bytes of a head revision's literal text for
// image/video/archive/audio signatures. RCS has no notion of a binary flag
// visible to this parser, so this is advisory only; binary content is still
// grepped as raw bytes rather than rejected.
func looksBinary(text string) bool {
	head := []byte(text)
	if len(head) > 261 {
		head = head[:261]
	}
	return filetype.IsImage(head) || filetype.IsVideo(head) ||
		filetype.IsArchive(head) || filetype.IsAudio(head)
}

// Filename returns the name or path the model was constructed from, for
// the 'f' grep format directive.
func (f *File) Filename() string { return f.filename }

// Deltanums returns all revision numbers in parse order.
func (f *File) Deltanums() []Revision {
	out := make([]Revision, len(f.deltaOrder))
	copy(out, f.deltaOrder)
	return out
}

// Delta returns the metadata record for r.
func (f *File) Delta(r Revision) (Delta, error) {
	d, ok := f.deltas[r]
	if !ok {
		return Delta{}, &UnknownRevision{Revision: r}
	}
	return d, nil
}

// DeltaText returns the payload record for r.
func (f *File) DeltaText(r Revision) (DeltaText, error) {
	dt, ok := f.deltatexts[r]
	if !ok {
		return DeltaText{}, &UnknownRevision{Revision: r}
	}
	return dt, nil
}

// Head returns the tip of the trunk: the admin head field if set, or
// otherwise the numerically greatest two-component (trunk) revision.
func (f *File) Head() Revision {
	if f.admin.Head != "" {
		return f.admin.Head
	}
	var best Revision
	for _, r := range f.deltaOrder {
		if !r.IsTrunk() {
			continue
		}
		if best == "" || r.Compare(best) > 0 {
			best = r
		}
	}
	return best
}

// NextTuple pairs a revision with its immediate trunk ancestor.
type NextTuple struct {
	Deltanum Revision
	Next     Revision
}

// NextChain returns (r, next(r)) for every delta, in parse order.
func (f *File) NextChain() []NextTuple {
	out := make([]NextTuple, 0, len(f.deltaOrder))
	for _, r := range f.deltaOrder {
		out = append(out, NextTuple{Deltanum: r, Next: f.deltas[r].Next})
	}
	return out
}

// Ancestors returns the chain starting at r and following next, inclusive
// of r, until a delta with no next is reached. If the chain names a next
// revision with no matching delta, a warning is emitted and the gathered
// prefix is returned.
func (f *File) Ancestors(r Revision) []NextTuple {
	var out []NextTuple
	curr := r
	seen := map[Revision]bool{}
	for curr != "" {
		if seen[curr] {
			f.Logger.Warnf("rcs: cycle detected in delta chain at revision %s", curr)
			break
		}
		seen[curr] = true
		d, ok := f.deltas[curr]
		if !ok {
			f.Logger.Warnf("rcs: broken chain: revision %s is not present", curr)
			break
		}
		out = append(out, NextTuple{Deltanum: curr, Next: d.Next})
		curr = d.Next
	}
	return out
}

// Tags returns the symbolic names bound to r, in the order they appear in
// the admin symbols table.
func (f *File) Tags(r Revision) []string {
	var out []string
	for _, name := range f.admin.SymbolOrder {
		if f.admin.Symbols[name] == r {
			out = append(out, name)
		}
	}
	return out
}

// Symbols returns the raw symbolic-name -> revision table.
func (f *File) Symbols() map[string]Revision {
	out := make(map[string]Revision, len(f.admin.Symbols))
	for k, v := range f.admin.Symbols {
		out[k] = v
	}
	return out
}

// Author returns the author recorded for r.
func (f *File) Author(r Revision) (string, error) {
	d, err := f.Delta(r)
	if err != nil {
		return "", err
	}
	return d.Author, nil
}

// Date returns the raw RCS date string recorded for r.
func (f *File) Date(r Revision) (string, error) {
	d, err := f.Delta(r)
	if err != nil {
		return "", err
	}
	return d.Date, nil
}

// Message returns the commit log message recorded for r.
func (f *File) Message(r Revision) (string, error) {
	dt, err := f.DeltaText(r)
	if err != nil {
		return "", err
	}
	return dt.Log, nil
}

// Admin exposes the parsed admin block, for callers that need access
// (tags, locks, comment) rather than a single field.
func (f *File) Admin() Admin { return f.admin }

// Description returns the RCS file's description block.
func (f *File) Description() string { return f.desc }
