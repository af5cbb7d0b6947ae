package rcs

// Recursive-descent parser for the RCS file grammar:
//
//   rcstext   := admin {delta} desc {deltatext}
//   admin     := "head" [num] ";"
//                ["branch" [num] ";"]
//                "access" {id} ";"
//                "symbols" {sym ":" num} ";"
//                "locks"   {id  ":" num} ";" ["strict" ";"]
//                ["comment" string ";"]
//                ["expand"  string ";"]
//   delta     := num "date" num ";" "author" id ";" "state" [id] ";"
//                "branches" {num} ";" "next" [num] ";"
//   desc      := "desc" string
//   deltatext := num "log" string {id {id|num|string|":"}} "text" string
//
// Unknown "id ... ;" vendor-extension fields are skipped both inside admin
// (after "expand") and inside each delta (after "next").

// Admin is the parsed admin block of an RCS file.
type Admin struct {
	Head    Revision
	Branch  Revision
	Access  []string
	Symbols map[string]Revision
	// SymbolOrder preserves the order symbols appeared in the file, since
	// Symbols (a map) does not.
	SymbolOrder []string
	Locks       map[string]Revision
	LockOrder   []string
	Strict      bool
	Comment     string
	HasComment  bool
	Expand      string
	HasExpand   bool
}

// Delta is one parsed delta (metadata) record, keyed by Deltanum.
type Delta struct {
	Deltanum Revision
	Date     string
	Author   string
	State    string
	Branches []Revision
	Next     Revision
}

// DeltaText is one parsed delta-text (payload) record, keyed by Deltanum.
type DeltaText struct {
	Deltanum Revision
	Log      string
	Text     string
}

// RawFile is the direct, order-preserving output of the parser, before the
// File model (model.go) indexes it by revision number.
type RawFile struct {
	Admin      Admin
	Deltas     []Delta
	Desc       string
	DeltaTexts []DeltaText
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (token, bool) {
	if p.eof() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) peekAt(offset int) (token, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return token{}, false
	}
	return p.toks[i], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) errPos() int {
	if p.eof() {
		if len(p.toks) > 0 {
			return p.toks[len(p.toks)-1].pos
		}
		return 0
	}
	return p.toks[p.pos].pos
}

func (p *parser) expectWord(expected string) error {
	t, ok := p.next()
	if !ok || t.kind != tokWord || t.text != expected {
		return &MalformedInput{Pos: p.errPos(), Message: "expected keyword " + expected}
	}
	return nil
}

func (p *parser) expectSemi() error {
	t, ok := p.next()
	if !ok || t.kind != tokSemi {
		return &MalformedInput{Pos: p.errPos(), Message: "expected ';'"}
	}
	return nil
}

func (p *parser) expectColon() error {
	t, ok := p.next()
	if !ok || t.kind != tokColon {
		return &MalformedInput{Pos: p.errPos(), Message: "expected ':'"}
	}
	return nil
}

func (p *parser) expectWordAny() (string, error) {
	t, ok := p.next()
	if !ok || t.kind != tokWord {
		return "", &MalformedInput{Pos: p.errPos(), Message: "expected identifier or number"}
	}
	return t.text, nil
}

func (p *parser) expectString() (string, error) {
	t, ok := p.next()
	if !ok || t.kind != tokString {
		return "", &MalformedInput{Pos: p.errPos(), Message: "expected @-string"}
	}
	return t.text, nil
}

func (p *parser) atSemi() bool {
	t, ok := p.peek()
	return ok && t.kind == tokSemi
}

func (p *parser) peekWordIs(s string) bool {
	t, ok := p.peek()
	return ok && t.kind == tokWord && t.text == s
}

// readWordsUntilSemi collects bare-word tokens up to (not including) the
// next ';', then consumes the ';'.
func (p *parser) readWordsUntilSemi() ([]string, error) {
	var out []string
	for {
		t, ok := p.peek()
		if !ok {
			return nil, &MalformedInput{Pos: p.errPos(), Message: "expected ';'"}
		}
		if t.kind == tokSemi {
			p.pos++
			return out, nil
		}
		if t.kind != tokWord {
			return nil, &MalformedInput{Pos: p.errPos(), Message: "expected identifier"}
		}
		out = append(out, t.text)
		p.pos++
	}
}

// readPairsUntilSemi parses a {id ':' num} group, as used by both "symbols"
// and "locks".
func (p *parser) readPairsUntilSemi() ([]string, []Revision, error) {
	var names []string
	var revs []Revision
	for {
		if p.atSemi() {
			p.pos++
			return names, revs, nil
		}
		name, err := p.expectWordAny()
		if err != nil {
			return nil, nil, err
		}
		if err := p.expectColon(); err != nil {
			return nil, nil, err
		}
		rev, err := p.expectWordAny()
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		revs = append(revs, Revision(rev))
	}
}

// looksLikeDeltaStart reports whether the parser is positioned at the start
// of a new delta record: a bare word (the revision number) immediately
// followed by the "date" keyword.
func (p *parser) looksLikeDeltaStart() bool {
	t0, ok := p.peek()
	if !ok || t0.kind != tokWord {
		return false
	}
	t1, ok := p.peekAt(1)
	return ok && t1.kind == tokWord && t1.text == "date"
}

// skipVendorFields skips zero or more "id {id|num|string|':'} ;" groups,
// vendor extension fields RCS allows inside admin and delta blocks, until
// stop reports that the next token begins the following construct.
func (p *parser) skipVendorFields(stop func() bool) error {
	for {
		if p.eof() || stop() {
			return nil
		}
		// Consume the field name.
		if _, err := p.expectWordAny(); err != nil {
			return err
		}
		for {
			t, ok := p.peek()
			if !ok {
				return &MalformedInput{Pos: p.errPos(), Message: "unterminated vendor field"}
			}
			if t.kind == tokSemi {
				p.pos++
				break
			}
			// id | num | string | ':' are all acceptable filler tokens.
			p.pos++
		}
	}
}

func parseAdmin(p *parser) (Admin, error) {
	var a Admin
	a.Symbols = map[string]Revision{}
	a.Locks = map[string]Revision{}

	if err := p.expectWord("head"); err != nil {
		return a, err
	}
	if !p.atSemi() {
		rev, err := p.expectWordAny()
		if err != nil {
			return a, err
		}
		a.Head = Revision(rev)
	}
	if err := p.expectSemi(); err != nil {
		return a, err
	}

	if p.peekWordIs("branch") {
		p.pos++
		if !p.atSemi() {
			rev, err := p.expectWordAny()
			if err != nil {
				return a, err
			}
			a.Branch = Revision(rev)
		}
		if err := p.expectSemi(); err != nil {
			return a, err
		}
	}

	if err := p.expectWord("access"); err != nil {
		return a, err
	}
	access, err := p.readWordsUntilSemi()
	if err != nil {
		return a, err
	}
	a.Access = access

	if err := p.expectWord("symbols"); err != nil {
		return a, err
	}
	symNames, symRevs, err := p.readPairsUntilSemi()
	if err != nil {
		return a, err
	}
	for i, name := range symNames {
		if _, dup := a.Symbols[name]; dup {
			return a, &MalformedInput{Pos: p.errPos(), Message: "duplicate symbol " + name}
		}
		a.Symbols[name] = symRevs[i]
		a.SymbolOrder = append(a.SymbolOrder, name)
	}

	if err := p.expectWord("locks"); err != nil {
		return a, err
	}
	lockNames, lockRevs, err := p.readPairsUntilSemi()
	if err != nil {
		return a, err
	}
	for i, name := range lockNames {
		a.Locks[name] = lockRevs[i]
		a.LockOrder = append(a.LockOrder, name)
	}

	if p.peekWordIs("strict") {
		p.pos++
		a.Strict = true
		if err := p.expectSemi(); err != nil {
			return a, err
		}
	}

	if p.peekWordIs("comment") {
		p.pos++
		s, err := p.expectString()
		if err != nil {
			return a, err
		}
		a.Comment, a.HasComment = s, true
		if err := p.expectSemi(); err != nil {
			return a, err
		}
	}

	if p.peekWordIs("expand") {
		p.pos++
		s, err := p.expectString()
		if err != nil {
			return a, err
		}
		a.Expand, a.HasExpand = s, true
		if err := p.expectSemi(); err != nil {
			return a, err
		}
	}

	// Vendor extension fields before the delta list starts (or before
	// "desc" if there are no deltas at all).
	err = p.skipVendorFields(func() bool {
		return p.looksLikeDeltaStart() || p.peekWordIs("desc")
	})
	return a, err
}

func parseDelta(p *parser) (Delta, error) {
	var d Delta
	rev, err := p.expectWordAny()
	if err != nil {
		return d, err
	}
	d.Deltanum = Revision(rev)

	if err := p.expectWord("date"); err != nil {
		return d, err
	}
	date, err := p.expectWordAny()
	if err != nil {
		return d, err
	}
	d.Date = date
	if err := p.expectSemi(); err != nil {
		return d, err
	}

	if err := p.expectWord("author"); err != nil {
		return d, err
	}
	author, err := p.expectWordAny()
	if err != nil {
		return d, err
	}
	d.Author = author
	if err := p.expectSemi(); err != nil {
		return d, err
	}

	if err := p.expectWord("state"); err != nil {
		return d, err
	}
	if !p.atSemi() {
		state, err := p.expectWordAny()
		if err != nil {
			return d, err
		}
		d.State = state
	}
	if err := p.expectSemi(); err != nil {
		return d, err
	}

	if err := p.expectWord("branches"); err != nil {
		return d, err
	}
	branches, err := p.readWordsUntilSemi()
	if err != nil {
		return d, err
	}
	for _, b := range branches {
		d.Branches = append(d.Branches, Revision(b))
	}

	if err := p.expectWord("next"); err != nil {
		return d, err
	}
	if !p.atSemi() {
		next, err := p.expectWordAny()
		if err != nil {
			return d, err
		}
		d.Next = Revision(next)
	}
	if err := p.expectSemi(); err != nil {
		return d, err
	}

	err = p.skipVendorFields(func() bool {
		return p.looksLikeDeltaStart() || p.peekWordIs("desc")
	})
	return d, err
}

func parseDesc(p *parser) (string, error) {
	if err := p.expectWord("desc"); err != nil {
		return "", err
	}
	return p.expectString()
}

func parseDeltaText(p *parser) (DeltaText, error) {
	var dt DeltaText
	rev, err := p.expectWordAny()
	if err != nil {
		return dt, err
	}
	dt.Deltanum = Revision(rev)

	if err := p.expectWord("log"); err != nil {
		return dt, err
	}
	log, err := p.expectString()
	if err != nil {
		return dt, err
	}
	dt.Log = log

	if err := p.skipVendorFields(func() bool { return p.peekWordIs("text") }); err != nil {
		return dt, err
	}

	if err := p.expectWord("text"); err != nil {
		return dt, err
	}
	text, err := p.expectString()
	if err != nil {
		return dt, err
	}
	dt.Text = text
	return dt, nil
}

// ParseBytes parses a complete RCS file held in memory, returning the raw
// (order-preserving, non-indexed) parse tree or a *MalformedInput /
// *DuplicateRevision error.
func ParseBytes(data []byte) (*RawFile, error) {
	toks, err := lex(data)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	admin, err := parseAdmin(p)
	if err != nil {
		return nil, err
	}

	rf := &RawFile{Admin: admin}
	seenDeltas := map[Revision]bool{}
	for p.looksLikeDeltaStart() {
		d, err := parseDelta(p)
		if err != nil {
			return nil, err
		}
		if seenDeltas[d.Deltanum] {
			return nil, &DuplicateRevision{Revision: d.Deltanum, Section: "delta"}
		}
		seenDeltas[d.Deltanum] = true
		rf.Deltas = append(rf.Deltas, d)
	}

	desc, err := parseDesc(p)
	if err != nil {
		return nil, err
	}
	rf.Desc = desc

	seenTexts := map[Revision]bool{}
	for !p.eof() {
		dt, err := parseDeltaText(p)
		if err != nil {
			return nil, err
		}
		if seenTexts[dt.Deltanum] {
			return nil, &DuplicateRevision{Revision: dt.Deltanum, Section: "deltatext"}
		}
		seenTexts[dt.Deltanum] = true
		rf.DeltaTexts = append(rf.DeltaTexts, dt)
	}

	return rf, nil
}
