package backtest

// concurrent.go: ejecución de configuraciones independientes en paralelo.
//
// Cada corrida construye su propia Source; lo único compartido entre
// goroutines es la historia y la tabla de pagos, que son de solo lectura.

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// runConcurrent ejecuta cada configuración con hasta `workers` corridas a la vez.
// Devuelve los resultados en el mismo orden que configs y qué posiciones completaron.
// Con workers <= 1 la ejecución es secuencial.
func runConcurrent(
	ctx context.Context,
	runner *Runner,
	configs []domain.BacktestConfig,
	workers int,
	progress *Progress,
) ([]domain.BacktestResult, []bool, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]domain.BacktestResult, len(configs))
	completed := make([]bool, len(configs))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, cfg := range configs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := runner.Run(ctx, cfg)
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				// Una config inválida no invalida el resto del grid.
				slog.Warn("backtest run failed",
					"n", i+1,
					"pattern_size", cfg.PatternSize,
					"err", err,
				)
			default:
				results[i] = res
				completed[i] = true
			}
			if progress != nil {
				progress.Increment()
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	slog.Debug("concurrent runs complete",
		"configs", len(configs),
		"workers", workers,
	)
	return results, completed, err
}
