package ports

import (
	"context"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// ResultStore persiste los resultados de una corrida o de un grid search.
type ResultStore interface {
	// SaveResults persiste el lote y devuelve dónde quedó (ruta o id de lote).
	SaveResults(ctx context.Context, set domain.ResultSet) (string, error)

	// Close libera los recursos del store.
	Close() error
}
