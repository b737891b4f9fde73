package ports

import (
	"context"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// HistoryProvider entrega la historia de sorteos en orden cronológico.
type HistoryProvider interface {
	// LoadHistory devuelve todas las rondas disponibles. Index coincide con la posición.
	LoadHistory(ctx context.Context) ([]domain.Round, error)
}

// PayoutProvider entrega la tabla de multiplicadores.
type PayoutProvider interface {
	LoadPayouts(ctx context.Context) (domain.PayoutTable, error)
}
