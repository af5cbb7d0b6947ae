// rcsgraph renders the delta ancestor chain of one or more RCS ",v" files
// as a Graphviz DOT graph, optionally highlighting revisions where a
// pattern matches.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/emicklei/dot"
	"github.com/perforce/p4prometheus/version"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/rcowham/rcsgrep/rcs"
)

// Options holds the parsed command-line configuration for one rcsgraph run.
type Options struct {
	files   []string
	output  string
	pattern string
	debug   bool
}

// RcsGraph builds a dot.Graph out of one or more parsed RCS files.
type RcsGraph struct {
	logger *logrus.Logger
	opts   Options
	graph  *dot.Graph
}

func NewRcsGraph(logger *logrus.Logger, opts Options) *RcsGraph {
	return &RcsGraph{logger: logger, opts: opts, graph: dot.NewGraph(dot.Directed)}
}

// AddFile walks f's ancestor chain, adding one node per revision and one
// edge per next link. If opts.pattern is set, nodes with at least one match
// are filled.
func (rg *RcsGraph) AddFile(f *rcs.File) error {
	matched := map[rcs.Revision]bool{}
	if rg.opts.pattern != "" {
		matches, err := f.Grep(rg.opts.pattern, false)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Filename(), err)
		}
		for _, m := range matches {
			matched[m.Revision] = true
		}
	}

	nodes := map[rcs.Revision]dot.Node{}
	nodeFor := func(r rcs.Revision) dot.Node {
		if n, ok := nodes[r]; ok {
			return n
		}
		author, _ := f.Author(r)
		date, _ := f.Date(r)
		label := fmt.Sprintf("%s\\n%s %s\\n%s", f.Filename(), r, author, date)
		n := rg.graph.Node(label)
		if matched[r] {
			n = n.Attr("style", "filled").Attr("fillcolor", "lightyellow")
		}
		nodes[r] = n
		return n
	}

	for _, anc := range f.Ancestors(f.Head()) {
		curr := nodeFor(anc.Deltanum)
		if anc.Next == "" {
			continue
		}
		next := nodeFor(anc.Next)
		rg.graph.Edge(curr, next, "next")
	}
	return nil
}

func main() {
	var (
		files = kingpin.Arg(
			"file",
			"RCS ',v' files to graph.",
		).Required().Strings()
		output = kingpin.Flag(
			"output",
			"Graphviz dot file to write.",
		).Short('o').Default("rcsgraph.dot").String()
		pattern = kingpin.Flag(
			"highlight",
			"Highlight revisions where this pattern matches.",
		).Short('p').String()
		debug = kingpin.Flag(
			"debug",
			"Enable debug-level logging.",
		).Bool()
	)
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version(version.Print("rcsgraph")).Author("Robert Cowham")
	kingpin.CommandLine.Help = "Renders the delta ancestor chain of RCS ',v' files as a Graphviz DOT file\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := logrus.New()
	logger.Level = logrus.InfoLevel
	if *debug {
		logger.Level = logrus.DebugLevel
	}

	opts := Options{files: *files, output: *output, pattern: *pattern, debug: *debug}
	startTime := time.Now()
	logger.Infof("%v", version.Print("rcsgraph"))
	logger.Debugf("Starting %s, files: %v", startTime, opts.files)

	rg := NewRcsGraph(logger, opts)
	for _, path := range opts.files {
		f, err := rcs.NewFromPath(path)
		if err != nil {
			logger.Errorf("%s: %v", path, err)
			os.Exit(1)
		}
		f.Logger = logger
		if err := rg.AddFile(f); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	}

	out, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		logger.Errorf("failed to create %v: %v", opts.output, err)
		os.Exit(1)
	}
	defer out.Close()
	if _, err := out.Write([]byte(rg.graph.String())); err != nil {
		logger.Errorf("failed to write %v: %v", opts.output, err)
		os.Exit(1)
	}
}
