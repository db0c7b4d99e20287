package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"mapsync.ai/internal/model"
	"mapsync.ai/internal/multimap"
	persistlog "mapsync.ai/internal/persistence/log"
	"mapsync.ai/internal/persistence/snapshot"
)

func main() {
	logger := log.New(os.Stdout, "[mapsync] ", log.LstdFlags|log.Lmicroseconds)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "info":
		infoCmd(args)
	case "dedupe":
		bulkCmd("dedupe", args, logger, func(s *session, apply bool) report { return s.dedupe(apply) })
	case "coalesce":
		bulkCmd("coalesce", args, logger, func(s *session, apply bool) report { return s.coalesce(apply) })
	case "propagate":
		propagateCmd(args, logger)
	case "journal":
		journalCmd(args)
	case "serve":
		serveCmd(args, logger)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mapsync <info|dedupe|coalesce|propagate|journal|serve> [flags]")
}

func loadConfig(path string) multimap.Config {
	cfg, err := multimap.LoadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	return cfg
}

func infoCmd(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfgPath := fs.String("config", "./mapsync.yaml", "map set config path")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	for i, path := range cfg.Maps() {
		h, err := snapshot.ReadHeader(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read header:", err)
			os.Exit(1)
		}
		role := "sub"
		if i == 0 {
			role = "main"
		}
		fmt.Printf("%-4s %s v%d %dx%d fixtures=%d\n", role, path, h.Version, h.Rows, h.Cols, h.Fixtures)
	}
}

func bulkCmd(name string, args []string, logger *log.Logger, run func(*session, bool) report) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfgPath := fs.String("config", "./mapsync.yaml", "map set config path")
	apply := fs.Bool("apply", false, "apply every proposal and save modified maps (default: list only)")
	_ = fs.Parse(args)

	s, err := openSession(loadConfig(*cfgPath), logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer s.close()

	r := run(s, *apply)
	for _, line := range r.Lines {
		fmt.Println(line)
	}
	fmt.Printf("%s: %d proposal(s), %d applied\n", name, r.Proposals, r.Applied)
	if !*apply {
		return
	}
	n, err := s.save()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Printf("saved %d map(s)", n)
}

func propagateCmd(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("propagate", flag.ExitOnError)
	cfgPath := fs.String("config", "./mapsync.yaml", "map set config path")
	row := fs.Int("row", -1, "row of the reference location")
	col := fs.Int("col", -1, "column of the reference location")
	_ = fs.Parse(args)

	s, err := openSession(loadConfig(*cfgPath), logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer s.close()

	p := model.Point{Row: *row, Col: *col}
	if !s.mgr.MapSet().Main().Dimensions().Contains(p) {
		fmt.Fprintf(os.Stderr, "location %v outside the map\n", p)
		os.Exit(2)
	}
	r := s.propagate(p)
	n, err := s.save()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("propagate %v: %d change set(s), %d map(s) saved\n", p, r.Applied, n)
}

// journalCmd prints journal records as JSON lines, optionally filtered.
func journalCmd(args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	dir := fs.String("dir", "./journal", "journal directory")
	fixture := fs.Int("fixture", -1, "only records touching this fixture id")
	mapName := fs.String("map", "", "only records for this map filename")
	_ = fs.Parse(args)

	files, err := persistlog.ListJournalFiles(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list journal:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	var n int
	for _, path := range files {
		err := persistlog.ReadJournalFile(path, func(r persistlog.JournalRecord) error {
			if *fixture >= 0 && r.FixtureID != *fixture {
				return nil
			}
			if *mapName != "" && !strings.EqualFold(r.Map, *mapName) {
				return nil
			}
			n++
			return enc.Encode(r)
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "read journal:", err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "%d record(s) from %d file(s)\n", n, len(files))
}
