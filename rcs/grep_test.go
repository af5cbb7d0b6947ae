package rcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func adminHeader(head string) string {
	return "head\t" + head + ";\naccess;\nsymbols;\nlocks;\ncomment\t@@;\n\n"
}

func deltaBlock(num, next string) string {
	return num + "\ndate\t2020.01.01.00.00.00;\tauthor\tjoe;\tstate\tExp;\nbranches;\nnext\t" + next + ";\n\n"
}

func deltaTextBlock(num, log, text string) string {
	return num + "\nlog\n@" + log + "@\ntext\n@" + text + "@\n\n"
}

const descBlock = "desc\n@@\n\n"

func rcsSource(head string, deltas []string, deltatexts []string) string {
	src := adminHeader(head)
	for _, d := range deltas {
		src += d
	}
	src += descBlock
	for _, dt := range deltatexts {
		src += dt
	}
	return src
}

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := New([]byte(src), "test,v")
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return f
}

// Scenario 1: single revision, one match.
func TestGrepSingleRevision(t *testing.T) {
	src := rcsSource("1.1",
		[]string{deltaBlock("1.1", "")},
		[]string{deltaTextBlock("1.1", "initial", "hello\nworld\n")},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("hello", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{{Revision: "1.1", Lineno: 1, Line: "hello"}}, matches)
}

// Scenario 2: two revisions, empty script preserves the line.
func TestGrepLinePreservedAcrossEmptyScript(t *testing.T) {
	src := rcsSource("1.2",
		[]string{deltaBlock("1.2", "1.1"), deltaBlock("1.1", "")},
		[]string{deltaTextBlock("1.2", "second", "foo\nbar\n"), deltaTextBlock("1.1", "first", "")},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("foo", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{
		{Revision: "1.2", Lineno: 1, Line: "foo"},
		{Revision: "1.1", Lineno: 1, Line: "foo"},
	}, matches)
}

// Scenario 3: a deletion in the parent's script removes the match from
// that revision but leaves the newer revision's match intact.
func TestGrepDeletionInParent(t *testing.T) {
	src := rcsSource("1.2",
		[]string{deltaBlock("1.2", "1.1"), deltaBlock("1.1", "")},
		[]string{
			deltaTextBlock("1.2", "second", "a\nb\nc\n"),
			deltaTextBlock("1.1", "first", "d2 1\n"),
		},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("b", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{{Revision: "1.2", Lineno: 2, Line: "b"}}, matches)
}

// Scenario 6: continuation lines are dragged in regardless of match.
func TestGrepWrapContinuations(t *testing.T) {
	text := "foo\\\nbar\nqux\n"
	src := rcsSource("1.1",
		[]string{deltaBlock("1.1", "")},
		[]string{deltaTextBlock("1.1", "initial", text)},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("foo", true)
	assert.NoError(t, err)
	assert.Equal(t, []Match{
		{Revision: "1.1", Lineno: 1, Line: `foo\`},
		{Revision: "1.1", Lineno: 2, Line: "bar"},
	}, matches)

	// Without wrapping, only the directly matching line is returned.
	matchesNoWrap, err := f.Grep("foo", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{{Revision: "1.1", Lineno: 1, Line: `foo\`}}, matchesNoWrap)
}

// The d/a overlap case: a deletion and an insertion sharing the same
// anchor place the inserted line one earlier than naive arithmetic would.
func TestGrepDeleteInsertOverlap(t *testing.T) {
	src := rcsSource("1.2",
		[]string{deltaBlock("1.2", "1.1"), deltaBlock("1.1", "")},
		[]string{
			deltaTextBlock("1.2", "second", "p\nq\nr\ns\nt\n"),
			deltaTextBlock("1.1", "first", "d3 2\na3 1\nX\n"),
		},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("X", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{{Revision: "1.1", Lineno: 3, Line: "X"}}, matches)
}

// A line that the head revision introduced (its parent's script deletes
// it) is reported for the head only and does not travel back further.
func TestGrepInsertionIntroducesMatch(t *testing.T) {
	src := rcsSource("1.2",
		[]string{deltaBlock("1.2", "1.1"), deltaBlock("1.1", "")},
		[]string{
			deltaTextBlock("1.2", "second", "x\nneedle\ny\n"),
			// Going from 1.2 back to 1.1: delete the inserted line.
			deltaTextBlock("1.1", "first", "d2 1\n"),
		},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("needle", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{{Revision: "1.2", Lineno: 2, Line: "needle"}}, matches)
}

// Idempotence of an empty script: every match labelled curr also appears
// labelled next, unchanged.
func TestGrepEmptyScriptIsIdempotent(t *testing.T) {
	src := rcsSource("1.3",
		[]string{deltaBlock("1.3", "1.2"), deltaBlock("1.2", "1.1"), deltaBlock("1.1", "")},
		[]string{
			deltaTextBlock("1.3", "third", "alpha\nbeta\n"),
			deltaTextBlock("1.2", "second", ""),
			deltaTextBlock("1.1", "first", ""),
		},
	)
	f := mustParse(t, src)
	matches, err := f.Grep("alpha", false)
	assert.NoError(t, err)
	assert.Equal(t, []Match{
		{Revision: "1.3", Lineno: 1, Line: "alpha"},
		{Revision: "1.2", Lineno: 1, Line: "alpha"},
		{Revision: "1.1", Lineno: 1, Line: "alpha"},
	}, matches)
}

func TestGrepBadPatternPropagatesError(t *testing.T) {
	src := rcsSource("1.1", []string{deltaBlock("1.1", "")}, []string{deltaTextBlock("1.1", "x", "a\n")})
	f := mustParse(t, src)
	_, err := f.Grep("(unterminated", false)
	assert.Error(t, err)
}

func TestFormatMatchDefaultDirectives(t *testing.T) {
	src := rcsSource("1.1", []string{deltaBlock("1.1", "")}, []string{deltaTextBlock("1.1", "initial commit", "hello\n")})
	f := mustParse(t, src)
	matches, err := f.Grep("hello", false)
	assert.NoError(t, err)
	tuple, err := f.FormatMatch(matches[0], DefaultFormat)
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{"1.1", 1, "hello"}, tuple)
}

func TestFormatMatchMetadataDirectives(t *testing.T) {
	src := rcsSource("1.1", []string{deltaBlock("1.1", "")}, []string{deltaTextBlock("1.1", "initial commit", "hello\n")})
	f := mustParse(t, src)
	matches, err := f.Grep("hello", false)
	assert.NoError(t, err)
	tuple, err := f.FormatMatch(matches[0], "amD")
	assert.NoError(t, err)
	assert.Equal(t, "joe", tuple[0])
	assert.Equal(t, "initial commit", tuple[1])
	assert.Equal(t, "2020-01-01T00:00:00Z", tuple[2])
}

func TestFormatMatchRejectsUnknownDirective(t *testing.T) {
	src := rcsSource("1.1", []string{deltaBlock("1.1", "")}, []string{deltaTextBlock("1.1", "x", "a\n")})
	f := mustParse(t, src)
	err := ValidateFormat("rlZ")
	assert.Error(t, err)
	var bf *BadFormat
	assert.ErrorAs(t, err, &bf)
	matches, _ := f.Grep("a", false)
	_, err = f.FormatMatch(matches[0], "Z")
	assert.Error(t, err)
}
