package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de kenolab.
type Config struct {
	Data     DataConfig            `yaml:"data"`
	Backtest BacktestConfig        `yaml:"backtest"`
	Momentum domain.BacktestConfig `yaml:"momentum"` // parámetros base del generador
	Pattern  domain.BacktestConfig `yaml:"pattern"`  // ventanas base del optimizador; K y hits los pone el grid
	Storage  StorageConfig         `yaml:"storage"`
	Log      LogConfig             `yaml:"log"`
}

// DataConfig indica de dónde se leen los datos y dónde se escriben los resultados.
type DataConfig struct {
	HistoryFile string `yaml:"history_file"`
	PayoutsFile string `yaml:"payouts_file"` // vacío: tabla de pagos incorporada
	OutputDir   string `yaml:"output_dir"`
	DrawCount   int    `yaml:"draw_count"`
}

// BacktestConfig controla la ejecución de los grids.
type BacktestConfig struct {
	Workers          int     `yaml:"workers"`
	TopResults       int     `yaml:"top_results"`
	BalanceReference float64 `yaml:"balance_reference"`
}

// StorageConfig controla la persistencia opcional en SQLite.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para desactivar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json | tint
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
// Con path vacío se usan solo los defaults y el entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	// Las secciones de estrategia parten de los defaults: el YAML solo pisa las keys presentes.
	cfg := Config{
		Momentum: domain.DefaultMomentumConfig(),
		Pattern:  domain.DefaultPatternConfig(5),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("KENO_HISTORY_FILE"); v != "" {
		cfg.Data.HistoryFile = v
	}
	if v := os.Getenv("KENO_PAYOUTS_FILE"); v != "" {
		cfg.Data.PayoutsFile = v
	}
	if v := os.Getenv("KENO_OUTPUT_DIR"); v != "" {
		cfg.Data.OutputDir = v
	}
	if v := os.Getenv("KENO_RESULTS_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("KENO_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KENO_WORKERS %q: %w", v, err)
		}
		cfg.Backtest.Workers = n
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Data.HistoryFile == "" {
		cfg.Data.HistoryFile = "data/keno-history.json"
	}
	if cfg.Data.OutputDir == "" {
		cfg.Data.OutputDir = "output"
	}
	if cfg.Data.DrawCount <= 0 {
		cfg.Data.DrawCount = domain.DefaultDrawCount
	}
	if cfg.Backtest.Workers <= 0 {
		cfg.Backtest.Workers = 1
	}
	if cfg.Backtest.TopResults <= 0 {
		cfg.Backtest.TopResults = 10
	}
	if cfg.Backtest.BalanceReference <= 0 {
		cfg.Backtest.BalanceReference = domain.DefaultBalanceReference
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// La estrategia de cada sección es fija aunque el YAML diga otra cosa.
	cfg.Momentum.Strategy = domain.StrategyMomentum
	cfg.Pattern.Strategy = domain.StrategyPattern
	cfg.Momentum.DrawCount = cfg.Data.DrawCount
	cfg.Pattern.DrawCount = cfg.Data.DrawCount
}
