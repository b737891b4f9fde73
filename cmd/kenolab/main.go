package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alejandrodnm/kenolab/config"
	"github.com/alejandrodnm/kenolab/internal/adapters/jsonfile"
	"github.com/alejandrodnm/kenolab/internal/adapters/storage"
	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/alejandrodnm/kenolab/internal/ports"
	"github.com/lmittmann/tint"
)

const usage = `usage: kenolab <command> [flags]

commands:
  momentum   backtest the momentum pattern generator (--optimize runs the grid)
  optimize   grid-search the pattern discovery + buildup filter parameters
  analyze    summarize an optimization results file
  trends     number streaks, coverage, pairs and pattern behaviour of a history file

run 'kenolab <command> -h' for the flags of each command`

type command func(ctx context.Context, args []string) error

func main() {
	commands := map[string]command{
		"momentum": runMomentum,
		"optimize": runOptimize,
		"analyze":  runAnalyze,
		"trends":   runTrends,
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd(ctx, os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("kenolab failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

// globalFlags son las flags comunes a todos los subcomandos.
type globalFlags struct {
	configPath string
	verbose    bool
	logFormat  string
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "config/config.yaml", "path to config file (empty: defaults + env)")
	fs.BoolVar(&g.verbose, "verbose", false, "set log level to debug")
	fs.StringVar(&g.logFormat, "format", "", "log format: text|json|tint (overrides config)")
}

// setup carga la config y configura el logger global.
func (g *globalFlags) setup() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

// dataFlags son las flags de entrada compartidas por los backtests.
type dataFlags struct {
	dataFile         string
	limit            int
	trackMaintaining bool
	difficulty       string
}

func (d *dataFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.dataFile, "data-file", "", "path to history JSON (overrides config)")
	fs.IntVar(&d.limit, "limit", 0, "limit dataset to last N rounds (0: all)")
	fs.BoolVar(&d.trackMaintaining, "track-maintaining", false, "track profitability with the payout table")
	fs.BoolVar(&d.trackMaintaining, "m", false, "shorthand for --track-maintaining")
	fs.StringVar(&d.difficulty, "difficulty", domain.DifficultyHigh, "payout difficulty: classic|low|medium|high")
	fs.StringVar(&d.difficulty, "d", domain.DifficultyHigh, "shorthand for --difficulty")
}

func (d *dataFlags) validate() error {
	if d.limit < 0 {
		return fmt.Errorf("%w: --limit must be >= 0", domain.ErrInvalidConfig)
	}
	if !domain.ValidDifficulty(d.difficulty) {
		return fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidConfig, d.difficulty)
	}
	return nil
}

func loadHistory(ctx context.Context, cfg *config.Config, d dataFlags) ([]domain.Round, error) {
	path := cfg.Data.HistoryFile
	if d.dataFile != "" {
		path = d.dataFile
	}
	var provider ports.HistoryProvider = jsonfile.NewHistoryFile(path, cfg.Data.DrawCount, d.limit)
	rounds, err := provider.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("history %q is empty", path)
	}
	slog.Info("history loaded", "path", path, "rounds", len(rounds))
	return rounds, nil
}

// loadPayouts devuelve nil si no se pidió tracking de rentabilidad.
func loadPayouts(ctx context.Context, cfg *config.Config, d dataFlags) (domain.PayoutTable, error) {
	if !d.trackMaintaining {
		return nil, nil
	}
	if cfg.Data.PayoutsFile == "" {
		slog.Info("using built-in payout table", "difficulty", d.difficulty)
		return domain.DefaultPayoutTable(), nil
	}
	var provider ports.PayoutProvider = jsonfile.NewPayoutFile(cfg.Data.PayoutsFile)
	table, err := provider.LoadPayouts(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("payout table loaded", "path", cfg.Data.PayoutsFile, "difficulty", d.difficulty)
	return table, nil
}

// openStores devuelve el writer JSON y, si hay DSN, el store SQLite.
func openStores(cfg *config.Config) ([]ports.ResultStore, error) {
	stores := []ports.ResultStore{jsonfile.NewResultWriter(cfg.Data.OutputDir)}
	if cfg.Storage.DSN == "" {
		return stores, nil
	}
	db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	return append(stores, db), nil
}

// saveResults persiste el lote en todos los stores. Usa un contexto propio
// para que un Ctrl-C durante el grid no impida guardar los parciales.
func saveResults(cfg *config.Config, set domain.ResultSet) error {
	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	for _, s := range stores {
		where, err := s.SaveResults(ctx, set)
		if err != nil {
			errs = append(errs, err)
		} else {
			slog.Info("results saved", "name", set.Name, "to", where)
		}
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// intList es una flag "3,4,5".
type intList []int

func (l *intList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(s string) error {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("invalid integer %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return errors.New("empty list")
	}
	*l = out
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Los logs van a stderr: stdout queda para las tablas.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "tint":
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.TimeOnly})
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
