package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/kenolab/config"
	"github.com/alejandrodnm/kenolab/internal/adapters/jsonfile"
	"github.com/alejandrodnm/kenolab/internal/adapters/notify"
	"github.com/alejandrodnm/kenolab/internal/adapters/storage"
	"github.com/alejandrodnm/kenolab/internal/analysis"
)

func runAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	var g globalFlags
	g.register(fs)
	fromDB := fs.Bool("db", false, "rank stored results from the sqlite store instead of a file")
	group := fs.String("group", "pattern_size_5", "result group to rank with --db")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := g.setup()
	if err != nil {
		return err
	}
	console := notify.NewConsole(cfg.Backtest.TopResults)

	if *fromDB {
		return analyzeStored(ctx, cfg, console, *group)
	}

	path := fs.Arg(0)
	if path == "" {
		if path, err = latestResults(cfg.Data.OutputDir); err != nil {
			return err
		}
	}
	results, err := jsonfile.LoadResults(path)
	if err != nil {
		return err
	}
	slog.Info("results loaded", "path", path, "groups", len(results))

	console.ReportAnalysis(analysis.AnalyzeResults(results))
	return nil
}

// analyzeStored imprime los mejores resultados de un grupo entre todos los lotes guardados.
func analyzeStored(ctx context.Context, cfg *config.Config, console *notify.Console, group string) error {
	if cfg.Storage.DSN == "" {
		return errors.New("analyze --db: storage.dsn is not configured")
	}
	db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	batches, err := db.Batches(ctx)
	if err != nil {
		return err
	}
	slog.Info("stored batches", "count", len(batches), "dsn", cfg.Storage.DSN)

	top, err := db.TopResults(ctx, group, cfg.Backtest.TopResults)
	if err != nil {
		return err
	}
	return console.ReportResults(ctx, fmt.Sprintf("Stored %s: top configurations", group), top)
}

// latestResults busca el archivo de optimización más reciente del directorio de salida.
func latestResults(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "optimization-results-*.json"))
	if err != nil {
		return "", fmt.Errorf("latestResults: %w", err)
	}

	var latest string
	var latestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest, latestMod = m, mod
		}
	}
	if latest == "" {
		return "", fmt.Errorf("latestResults: no optimization results in %q", dir)
	}
	return latest, nil
}
