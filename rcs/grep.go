package rcs

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Match is one (revision, line number, text) hit produced by Grep. Line
// numbers are 1-based and relative to the revision named in Revision.
type Match struct {
	Revision Revision
	Lineno   int
	Line     string
}

var (
	deleteCmdRe = regexp.MustCompile(`^d([0-9]+) ([0-9]+)`)
	insertCmdRe = regexp.MustCompile(`^a([0-9]+) ([0-9]+)`)
)

type editRange struct {
	M, N int
}

// insertedLine is a candidate match discovered inside an "aM N" block,
// before its final line number in curr's own numbering is known.
type insertedLine struct {
	anchor int // M
	offset int // 1-based position within the insertion block
	line   string
}

type replayStatus int

const (
	statusNone replayStatus = iota
	statusDelete
	statusInsert
)

// Grep walks the ancestor chain from head backwards, replaying each
// revision's reverse diff, and returns every line matching pattern across
// every revision, annotated with revision and line number. pattern is
// anchored at the start of the line (Go's regexp has no re.match
// equivalent, so the pattern is wrapped as "^(?:pattern)").
//
// When wrapContinuations is true, a matching line ending in '\' drags the
// following physical line into the result set as well, chaining through
// further trailing backslashes.
func (f *File) Grep(pattern string, wrapContinuations bool) ([]Match, error) {
	matcher, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, err
	}

	ancestors := f.Ancestors(f.Head())
	var matches []Match

	for idx, anc := range ancestors {
		curr, next := anc.Deltanum, anc.Next
		isHead := idx == 0

		dt, err := f.DeltaText(curr)
		if err != nil {
			f.Logger.Warnf("rcs: grep: stopping descent, no delta text for %s", curr)
			break
		}

		lines := strings.Split(dt.Text, "\n")

		var (
			status                       replayStatus
			startline, nolines, insertln int
			deletions, insertions        []editRange
			insertedMatches              []insertedLine
			takenext                     bool
		)

		for i, line := range lines {
			lineno := i + 1

			if isHead && i != len(lines)-1 {
				if matcher.MatchString(line) || takenext {
					matches = append(matches, Match{Revision: curr, Lineno: lineno, Line: line})
					takenext = wrapContinuations && strings.HasSuffix(line, `\`)
				}
				continue
			}

			if m := deleteCmdRe.FindStringSubmatch(line); m != nil {
				status = statusDelete
				startline, _ = strconv.Atoi(m[1])
				nolines, _ = strconv.Atoi(m[2])
				deletions = append(deletions, editRange{M: startline, N: nolines})
			} else if m := insertCmdRe.FindStringSubmatch(line); m != nil {
				status = statusInsert
				startline, _ = strconv.Atoi(m[1])
				nolines, _ = strconv.Atoi(m[2])
				insertln = 1
				insertions = append(insertions, editRange{M: startline, N: nolines})
				continue
			}

			switch status {
			case statusDelete:
				matches = dropDeletedMatches(matches, curr, startline, nolines)
				status = statusNone
			case statusInsert:
				if insertln <= nolines {
					if matcher.MatchString(line) || takenext {
						insertedMatches = append(insertedMatches, insertedLine{anchor: startline, offset: insertln, line: line})
						takenext = wrapContinuations && strings.HasSuffix(line, `\`)
					}
					insertln++
				} else {
					status = statusNone
				}
			}
		}

		// Translate matches still labelled curr from the script's source
		// numbering into curr's own (post-script) numbering.
		for i := range matches {
			if matches[i].Revision != curr {
				continue
			}
			matches[i].Lineno += adjustment(insertions, deletions, matches[i].Lineno)
		}

		// Compute curr-relative line numbers for lines this revision
		// introduced (found scanning insertion payloads) and fold them in.
		for _, im := range insertedMatches {
			overlap := 0
			for _, d := range deletions {
				if d.M == im.anchor {
					overlap = 1
					break
				}
			}
			lineno := im.anchor + im.offset + adjustment(insertions, deletions, im.anchor) - overlap
			matches = append(matches, Match{Revision: curr, Lineno: lineno, Line: im.line})
		}

		// Matches for curr form a contiguous run at the tail of the slice
		// (everything older was appended in earlier iterations); sort just
		// that run by line number.
		firstOfCurr := len(matches)
		for firstOfCurr > 0 && matches[firstOfCurr-1].Revision == curr {
			firstOfCurr--
		}
		tail := matches[firstOfCurr:]
		sort.SliceStable(tail, func(a, b int) bool {
			if tail[a].Lineno != tail[b].Lineno {
				return tail[a].Lineno < tail[b].Lineno
			}
			return tail[a].Line < tail[b].Line
		})

		// Propagate every match still labelled curr to next: those lines
		// continue to exist there too. Collected into a side slice first
		// and appended once, rather than extending matches while ranging
		// over it.
		if next != "" {
			var propagated []Match
			for _, m := range matches {
				if m.Revision == curr {
					propagated = append(propagated, Match{Revision: next, Lineno: m.Lineno, Line: m.Line})
				}
			}
			matches = append(matches, propagated...)
		}
	}

	return matches, nil
}

// adjustment computes the net line-number shift at lineno from edit
// commands strictly before it: total inserted lines minus total deleted
// lines, counting only commands whose anchor M is less than lineno.
func adjustment(insertions, deletions []editRange, lineno int) int {
	total := 0
	for _, ins := range insertions {
		if ins.M < lineno {
			total += ins.N
		}
	}
	for _, del := range deletions {
		if del.M < lineno {
			total -= del.N
		}
	}
	return total
}

// dropDeletedMatches removes matches labelled rev whose line number falls
// within the deleted range [start, start+n).
func dropDeletedMatches(matches []Match, rev Revision, start, n int) []Match {
	kept := matches[:0]
	for _, m := range matches {
		if m.Revision == rev && start <= m.Lineno && m.Lineno < start+n {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
