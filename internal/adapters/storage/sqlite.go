package storage

// sqlite.go: histórico de corridas consultable.
//
// Estrategia:
//   - `batches`: una fila por lote guardado (un grid search o una corrida única).
//   - `results`: una fila por BacktestResult, con las métricas de ranking en
//     columnas y el resultado completo en `payload` para reconstruirlo.
//   - El ranking se resuelve en SQL: TopResults ordena por success_rate sobre
//     todos los lotes de un mismo grupo.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
    id         TEXT PRIMARY KEY,
    name       TEXT     NOT NULL,
    created_at DATETIME NOT NULL,
    total      INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id      TEXT    NOT NULL REFERENCES batches(id),
    group_key     TEXT    NOT NULL,
    run_id        TEXT    NOT NULL,
    strategy      TEXT    NOT NULL,
    pattern_size  INTEGER NOT NULL,
    predictions   INTEGER NOT NULL DEFAULT 0,
    completions   INTEGER NOT NULL DEFAULT 0,
    success_rate  REAL    NOT NULL DEFAULT 0,
    avg_rounds    REAL    NOT NULL DEFAULT 0,
    avg_profit    REAL    NOT NULL DEFAULT 0,
    balance_score REAL    NOT NULL DEFAULT 0,
    payload       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_group   ON results(group_key, success_rate DESC);
CREATE INDEX IF NOT EXISTS idx_results_batch   ON results(batch_id);
CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at DESC);
`

// Batch es el resumen de un lote guardado.
type Batch struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Total     int
}

// SQLiteStorage implementa ports.ResultStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveResults inserta el lote completo en una transacción y devuelve su id.
func (s *SQLiteStorage) SaveResults(ctx context.Context, set domain.ResultSet) (string, error) {
	batchID := uuid.NewString()
	total := 0
	for _, results := range set.Groups {
		total += len(results)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveResults: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, name, created_at, total) VALUES (?, ?, ?, ?)`,
		batchID, set.Name, time.Now().UTC(), total,
	); err != nil {
		return "", fmt.Errorf("storage.SaveResults: insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (
			batch_id, group_key, run_id, strategy, pattern_size,
			predictions, completions, success_rate, avg_rounds, avg_profit,
			balance_score, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveResults: prepare: %w", err)
	}
	defer stmt.Close()

	// Orden de claves estable para que los ids sigan el orden de los grupos.
	keys := make([]string, 0, len(set.Groups))
	for k := range set.Groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		for _, r := range set.Groups[key] {
			payload, err := json.Marshal(r)
			if err != nil {
				return "", fmt.Errorf("storage.SaveResults: encode %s: %w", r.RunID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				batchID, key, r.RunID, string(r.Config.Strategy), r.PatternSize,
				r.TotalPredictions, r.TotalCompletions, r.SuccessRate, r.AvgRoundsToHit, r.AvgProfit,
				r.BalanceScore, string(payload),
			); err != nil {
				return "", fmt.Errorf("storage.SaveResults: insert result %s: %w", r.RunID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveResults: commit: %w", err)
	}
	return batchID, nil
}

// TopResults devuelve los mejores resultados de un grupo entre todos los lotes,
// por success_rate descendente (empates por balance_score).
func (s *SQLiteStorage) TopResults(ctx context.Context, groupKey string, limit int) ([]domain.BacktestResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM results
		WHERE group_key = ?
		ORDER BY success_rate DESC, balance_score DESC, id ASC
		LIMIT ?`, groupKey, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.TopResults: query: %w", err)
	}
	defer rows.Close()

	var out []domain.BacktestResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage.TopResults: scan: %w", err)
		}
		var r domain.BacktestResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("storage.TopResults: decode: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Batches devuelve los lotes guardados, del más reciente al más antiguo.
func (s *SQLiteStorage) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, total FROM batches ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage.Batches: query: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.Total); err != nil {
			return nil, fmt.Errorf("storage.Batches: scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
