package jsonfile

// history.go: lectura de la historia de sorteos exportada como JSON.
//
// Formato: array de objetos. Cada ronda trae `drawn`, o bien `hits` + `misses`
// (la unión reconstruye el sorteo). Cualquier otro campo se ignora.
// Un registro ilegible no aborta la carga: queda como ronda vacía.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

type roundRecord struct {
	Drawn  []int `json:"drawn"`
	Hits   []int `json:"hits"`
	Misses []int `json:"misses"`
}

// HistoryFile implementa ports.HistoryProvider sobre un archivo JSON.
type HistoryFile struct {
	path      string
	drawCount int
	limit     int
}

// NewHistoryFile crea un provider para el archivo dado.
// drawCount > 0 activa el aviso de rondas con cardinalidad distinta.
// limit > 0 conserva solo las últimas `limit` rondas.
func NewHistoryFile(path string, drawCount, limit int) *HistoryFile {
	return &HistoryFile{path: path, drawCount: drawCount, limit: limit}
}

// LoadHistory lee y decodifica el archivo completo.
func (h *HistoryFile) LoadHistory(_ context.Context) ([]domain.Round, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.LoadHistory: read %q: %w", h.path, err)
	}
	rounds, err := ParseHistory(data, h.drawCount)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.LoadHistory: %q: %w", h.path, err)
	}

	total := len(rounds)
	if h.limit > 0 && h.limit < total {
		rounds = reindex(domain.Tail(rounds, h.limit))
		slog.Info("history limited", "kept", len(rounds), "total", total)
	}
	return rounds, nil
}

// ParseHistory decodifica un array de rondas. Solo falla si el documento
// no es un array JSON; los registros individuales se degradan.
func ParseHistory(data []byte, drawCount int) ([]domain.Round, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("jsonfile.ParseHistory: decode array: %w", err)
	}

	rounds := make([]domain.Round, len(raw))
	malformed, mismatched := 0, 0
	for i, msg := range raw {
		drawn, ok := decodeRound(msg)
		if !ok {
			malformed++
		} else if drawCount > 0 && drawn.Len() != drawCount {
			mismatched++
		}
		rounds[i] = domain.Round{Index: i, Drawn: drawn}
	}

	if malformed > 0 {
		slog.Warn("malformed rounds loaded as empty", "count", malformed, "total", len(raw))
	}
	if mismatched > 0 {
		slog.Warn("rounds with unexpected draw count", "count", mismatched, "expected", drawCount)
	}
	return rounds, nil
}

// decodeRound devuelve false si el registro no permite reconstruir el sorteo
// o contiene números fuera del universo.
func decodeRound(msg json.RawMessage) (domain.NumberSet, bool) {
	var rec roundRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return 0, false
	}

	nums := rec.Drawn
	if nums == nil {
		nums = append(append([]int(nil), rec.Hits...), rec.Misses...)
	}
	if len(nums) == 0 {
		return 0, false
	}

	var s domain.NumberSet
	for _, n := range nums {
		if !domain.ValidNumber(n) {
			return 0, false
		}
		s = s.Add(n)
	}
	return s, true
}

func reindex(rounds []domain.Round) []domain.Round {
	out := make([]domain.Round, len(rounds))
	for i, r := range rounds {
		out[i] = domain.Round{Index: i, Drawn: r.Drawn}
	}
	return out
}
