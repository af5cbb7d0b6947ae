package rcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAncestorsWalksChainToRoot(t *testing.T) {
	src := rcsSource("1.3",
		[]string{deltaBlock("1.3", "1.2"), deltaBlock("1.2", "1.1"), deltaBlock("1.1", "")},
		[]string{
			deltaTextBlock("1.3", "c", "x\n"),
			deltaTextBlock("1.2", "b", ""),
			deltaTextBlock("1.1", "a", ""),
		},
	)
	f := mustParse(t, src)

	chain := f.Ancestors(f.Head())
	assert.Equal(t, []NextTuple{
		{Deltanum: "1.3", Next: "1.2"},
		{Deltanum: "1.2", Next: "1.1"},
		{Deltanum: "1.1", Next: ""},
	}, chain)
}

func TestAncestorsStopsOnBrokenChain(t *testing.T) {
	// 1.2's next points at 1.1, but no 1.1 delta exists at all.
	src := rcsSource("1.2",
		[]string{deltaBlock("1.2", "1.1")},
		[]string{deltaTextBlock("1.2", "only", "x\n")},
	)
	f := mustParse(t, src)

	chain := f.Ancestors(f.Head())
	assert.Equal(t, []NextTuple{{Deltanum: "1.2", Next: "1.1"}}, chain)
}

func TestAncestorsStopsOnCycle(t *testing.T) {
	// Two deltas whose next fields point at each other: not a legal RCS
	// file, but the walk must terminate rather than loop forever.
	src := adminHeader("1.1") +
		deltaBlock("1.1", "1.2") + deltaBlock("1.2", "1.1") +
		descBlock +
		deltaTextBlock("1.1", "a", "x\n") + deltaTextBlock("1.2", "b", "y\n")
	f := mustParse(t, src)

	chain := f.Ancestors(f.Head())
	assert.Equal(t, []NextTuple{
		{Deltanum: "1.1", Next: "1.2"},
		{Deltanum: "1.2", Next: "1.1"},
	}, chain)
}

func TestTagsAndSymbols(t *testing.T) {
	src := "head\t1.1;\naccess;\nsymbols\trel-1:1.1\tstable:1.1;\nlocks;\ncomment\t@@;\n\n" +
		deltaBlock("1.1", "") + descBlock + deltaTextBlock("1.1", "x", "a\n")
	f := mustParse(t, src)

	assert.Equal(t, []string{"rel-1", "stable"}, f.Tags("1.1"))
	assert.Equal(t, Revision("1.1"), f.Symbols()["rel-1"])
	assert.Empty(t, f.Tags("1.2"))
}

func TestAuthorDateMessageAndUnknownRevision(t *testing.T) {
	src := rcsSource("1.1", []string{deltaBlock("1.1", "")}, []string{deltaTextBlock("1.1", "initial commit", "a\n")})
	f := mustParse(t, src)

	author, err := f.Author("1.1")
	assert.NoError(t, err)
	assert.Equal(t, "joe", author)

	msg, err := f.Message("1.1")
	assert.NoError(t, err)
	assert.Equal(t, "initial commit", msg)

	date, err := f.Date("1.1")
	assert.NoError(t, err)
	assert.Equal(t, "2020.01.01.00.00.00", date)

	_, err = f.Author("1.2")
	assert.Error(t, err)
	var unknown *UnknownRevision
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, Revision("1.2"), unknown.Revision)
}

func TestNewFromPathReadsFixtureFile(t *testing.T) {
	src := rcsSource("1.1", []string{deltaBlock("1.1", "")}, []string{deltaTextBlock("1.1", "x", "hello\n")})
	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.txt,v")
	assert.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	f, err := NewFromPath(path)
	assert.NoError(t, err)
	assert.Equal(t, path, f.Filename())

	matches, err := f.Grep("hello", false)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestLooksBinarySniffsKnownSignatures(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n" + "rest of file content"
	assert.True(t, looksBinary(png))
	assert.False(t, looksBinary("hello\nworld\n"))
}
