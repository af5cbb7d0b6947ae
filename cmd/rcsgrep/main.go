// rcsgrep searches one or more RCS ",v" files for a pattern across their
// entire revision history, not just the head revision.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/perforce/p4prometheus/version"
	"github.com/rcowham/rcsgrep/config"
	"github.com/rcowham/rcsgrep/discover"
	"github.com/rcowham/rcsgrep/rcs"
	"github.com/rcowham/rcsgrep/report"
)

func main() {
	var (
		configFile = kingpin.Flag(
			"config",
			"Config file for rcsgrep.",
		).Default("rcsgrep.yaml").Short('c').String()
		pattern = kingpin.Arg(
			"pattern",
			"Regular expression to search for, anchored at the start of each line.",
		).Required().String()
		paths = kingpin.Arg(
			"path",
			"RCS ',v' files, or directories to search, to process.",
		).Required().Strings()
		format = kingpin.Flag(
			"format",
			"Output format string: any of r l L a d D t f m (overrides config).",
		).Short('f').String()
		wrap = kingpin.Flag(
			"wrap",
			"Drag continuation lines (trailing '\\') into a match regardless of whether they match (overrides config).",
		).Bool()
		recursive = kingpin.Flag(
			"recursive",
			"Recurse into directories looking for ',v' files.",
		).Short('r').Bool()
		caseInsensitive = kingpin.Flag(
			"case-insensitive-names",
			"Treat discovered file names as case-insensitive (overrides config).",
		).Bool()
		output = kingpin.Flag(
			"output",
			"File to write matches to (default stdout).",
		).Short('o').String()
		debug = kingpin.Flag(
			"debug",
			"Enable debug-level logging.",
		).Bool()
		cpuProfile = kingpin.Flag(
			"profile",
			"Enable CPU profiling, written to the working directory.",
		).Bool()
	)
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version(version.Print("rcsgrep")).Author("Robert Cowham")
	kingpin.CommandLine.Help = "Searches RCS ',v' files for a pattern across their full revision history\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	logger := logrus.New()
	logger.Level = logrus.InfoLevel
	if *debug {
		logger.Level = logrus.DebugLevel
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Errorf("error loading config file: %v", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.DefaultFormat = *format
	}
	if *caseInsensitive {
		cfg.CaseInsensitiveNames = true
	}
	wrapContinuations := cfg.WrapContinuations || *wrap

	startTime := time.Now()
	logger.Infof("%v", version.Print("rcsgrep"))
	logger.Debugf("Starting %s, pattern: %q", startTime, *pattern)

	files, err := resolveFiles(*paths, *recursive, cfg, logger)
	if err != nil {
		logger.Errorf("error discovering files: %v", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warnf("no ',v' files found")
		return
	}

	var out = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Errorf("failed to create %v: %v", *output, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	writer, err := report.NewWriter(out, cfg.DefaultFormat)
	if err != nil {
		logger.Errorf("invalid format: %v", err)
		os.Exit(1)
	}

	pool := pond.New(cfg.PoolSize, 0, pond.MinWorkers(1))
	var writeMu sync.Mutex
	var failed int32

	for _, path := range files {
		path := path
		pool.Submit(func() {
			f, err := rcs.NewFromPath(path)
			if err != nil {
				logger.Errorf("%s: %v", path, err)
				atomic.StoreInt32(&failed, 1)
				return
			}
			f.Logger = logger
			matches, err := f.Grep(*pattern, wrapContinuations)
			if err != nil {
				logger.Errorf("%s: %v", path, err)
				atomic.StoreInt32(&failed, 1)
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := writer.WriteAll(f, matches); err != nil {
				logger.Errorf("%s: %v", path, err)
				atomic.StoreInt32(&failed, 1)
			}
		})
	}
	pool.StopAndWait()

	if atomic.LoadInt32(&failed) != 0 {
		os.Exit(1)
	}
}

// loadConfig loads configFile, falling back to built-in defaults if it's
// left at its default name and simply doesn't exist.
func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.LoadConfigFile(configFile)
	if err != nil {
		if configFile == "rcsgrep.yaml" {
			if _, statErr := os.Stat(configFile); os.IsNotExist(statErr) {
				return config.Unmarshal(nil)
			}
		}
		return nil, err
	}
	return cfg, nil
}

// resolveFiles expands paths into a flat list of ',v' files. Directories
// are searched recursively via discover.Scan when recursive is set, and
// are otherwise skipped with a warning.
func resolveFiles(paths []string, recursive bool, cfg *config.Config, logger *logrus.Logger) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		if !recursive {
			logger.Warnf("%s is a directory; pass --recursive to search it", p)
			continue
		}
		tree, err := discover.Scan(p, cfg.CaseInsensitiveNames, cfg.ExcludeGlobs)
		if err != nil {
			return nil, err
		}
		for _, rel := range tree.Paths() {
			files = append(files, p+string(os.PathSeparator)+rel)
		}
	}
	return files, nil
}
