package ports

import (
	"context"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// Reporter presenta los resultados al usuario.
type Reporter interface {
	// ReportResults muestra los resultados ya ordenados bajo un título.
	// En la implementación de consola, imprime una tabla formateada.
	ReportResults(ctx context.Context, title string, results []domain.BacktestResult) error
}
