// Command importcsv loads a research-data CSV into the configured database
// using the same engine as the upload endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/yungbote/osteobridge-backend/internal/app"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

func main() {
	var (
		file       string
		configPath string
	)
	flag.StringVar(&file, "file", "", "path to the research-data CSV")
	flag.StringVar(&configPath, "config", "", "import options YAML (overrides IMPORT_CONFIG_PATH)")
	flag.Parse()
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: importcsv -file path.csv [-config import.yaml]")
		os.Exit(2)
	}

	if err := run(file, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(file, configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	if configPath != "" {
		cfg.ImportConfigPath = configPath
	}

	dbs, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer dbs.Close()

	reposet := app.NewRepos(dbs.DB(), log)
	coordinator, err := app.NewImportCoordinator(dbs.DB(), log, cfg, reposet)
	if err != nil {
		return err
	}
	svc := services.NewResearchImportService(log, coordinator, reposet.ImportRun, nil, nil, math.MaxInt64)

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}

	out, err := svc.Import(ctx, services.CSVUpload{FileName: filepath.Base(file), Size: st.Size(), Body: f})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Result)
}
