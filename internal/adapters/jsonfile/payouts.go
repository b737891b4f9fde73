package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// PayoutFile implementa ports.PayoutProvider.
// Formato: {"high": {"5": {"3": 3, "4": 20, "5": 300}}, ...}
type PayoutFile struct {
	path string
}

// NewPayoutFile crea un provider para el archivo dado.
func NewPayoutFile(path string) *PayoutFile {
	return &PayoutFile{path: path}
}

// LoadPayouts lee la tabla. Rechaza multiplicadores negativos y tamaños fuera de rango.
func (p *PayoutFile) LoadPayouts(_ context.Context) (domain.PayoutTable, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.LoadPayouts: read %q: %w", p.path, err)
	}

	var table domain.PayoutTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("jsonfile.LoadPayouts: parse %q: %w", p.path, err)
	}

	for diff, bySize := range table {
		for size, byHits := range bySize {
			if size < 1 || size > domain.MaxPatternSize {
				return nil, fmt.Errorf("jsonfile.LoadPayouts: %s: pattern size %d out of range", diff, size)
			}
			for hits, m := range byHits {
				if hits < 0 || hits > size || m < 0 {
					return nil, fmt.Errorf("jsonfile.LoadPayouts: %s/%d: invalid entry %d→%.2f", diff, size, hits, m)
				}
			}
		}
	}
	return table, nil
}
