package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"manifestlock/internal/config"
	"manifestlock/internal/domain"
	"manifestlock/internal/loader"
	"manifestlock/internal/lock"
	"manifestlock/internal/repository"
	"manifestlock/internal/repository/sqlite"
	"manifestlock/internal/service"
)

// pathList collects repeatable --paths flags.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func main() {
	// Command line flags
	var paths pathList
	flag.Var(&paths, "paths", "manifest directory or file to scan (repeatable)")
	hashlockPath := flag.String("hashlock", "", "hashlock ledger file location")
	mode := flag.String("mode", "", "run mode: update or verify (required)")
	failFast := flag.Bool("fail-fast", false, "stop at the first failure")
	configPath := flag.String("config", "", "config file path")
	historyPath := flag.String("history", "", "SQLite run-history database path")
	flag.Parse()

	log.SetFlags(0)

	if *mode != service.ModeUpdate && *mode != service.ModeVerify {
		fmt.Fprintln(os.Stderr, "--mode must be update or verify")
		flag.Usage()
		os.Exit(1)
	}

	cfg, cfgSource, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("[FAIL] %v", err)
	}
	if cfgSource != "" {
		log.Printf("Using config %s", cfgSource)
	}

	// Flags override the config file
	if len(paths) > 0 {
		cfg.Paths = paths
	}
	if *hashlockPath != "" {
		cfg.Hashlock = *hashlockPath
	}
	if *historyPath != "" {
		cfg.History = *historyPath
	}

	files, err := loader.Discover(cfg.Paths)
	if err != nil {
		log.Fatalf("[FAIL] discovery: %v", err)
	}

	var history repository.RunHistory
	if cfg.History != "" {
		repo, err := sqlite.New(cfg.History)
		if err != nil {
			log.Printf("[WARN] run history disabled: %v", err)
		} else {
			defer repo.Close()
			history = repo
		}
	}

	svc := service.NewLockService(lock.NewStore(cfg.Hashlock), history, service.Options{
		FailFast:   *failFast,
		Duplicates: cfg.DuplicateURNs,
	})

	ctx := context.Background()
	var report *domain.Report
	switch *mode {
	case service.ModeUpdate:
		report, err = svc.Update(ctx, files)
	case service.ModeVerify:
		report, err = svc.Verify(ctx, files)
	}
	if err != nil {
		log.Fatalf("[FAIL] %s: %v", *mode, err)
	}

	for _, w := range report.Warnings {
		log.Print(w)
	}
	for _, f := range report.Failures {
		log.Print(f)
	}
	log.Print(report.Summary())

	if report.Failed() {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
