package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// maxFileIndex acota la búsqueda del primer índice libre.
const maxFileIndex = 999

// ResultWriter implementa ports.ResultStore escribiendo un JSON indentado
// por lote en el directorio de salida: {name}-{NNN}.json, con NNN el primer
// índice libre.
type ResultWriter struct {
	dir string
}

// NewResultWriter crea un writer sobre dir. El directorio se crea al escribir.
func NewResultWriter(dir string) *ResultWriter {
	return &ResultWriter{dir: dir}
}

// SaveResults escribe el lote y devuelve la ruta creada.
func (w *ResultWriter) SaveResults(_ context.Context, set domain.ResultSet) (string, error) {
	if set.Name == "" {
		return "", errors.New("jsonfile.SaveResults: empty result set name")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("jsonfile.SaveResults: mkdir %q: %w", w.dir, err)
	}

	data, err := encodeSet(set)
	if err != nil {
		return "", fmt.Errorf("jsonfile.SaveResults: encode: %w", err)
	}

	for i := 1; i <= maxFileIndex; i++ {
		path := filepath.Join(w.dir, fmt.Sprintf("%s-%03d.json", set.Name, i))
		// O_EXCL: si otra corrida tomó el índice, se prueba el siguiente.
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("jsonfile.SaveResults: create %q: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("jsonfile.SaveResults: write %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("jsonfile.SaveResults: close %q: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("jsonfile.SaveResults: no free index for %q in %q", set.Name, w.dir)
}

// Close no hace nada: cada lote se escribe y cierra en SaveResults.
func (w *ResultWriter) Close() error { return nil }

func encodeSet(set domain.ResultSet) ([]byte, error) {
	if set.Single {
		for _, results := range set.Groups {
			if len(results) > 0 {
				return json.MarshalIndent(results[0], "", "  ")
			}
		}
		return nil, errors.New("single result set without results")
	}
	return json.MarshalIndent(set.Groups, "", "  ")
}

// LoadResults lee un archivo escrito por ResultWriter. Un archivo de corrida
// única se devuelve bajo la clave "single".
func LoadResults(path string) (map[string][]domain.BacktestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.LoadResults: read %q: %w", path, err)
	}

	var groups map[string][]domain.BacktestResult
	if err := json.Unmarshal(data, &groups); err == nil {
		return groups, nil
	}

	var single domain.BacktestResult
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("jsonfile.LoadResults: parse %q: %w", path, err)
	}
	return map[string][]domain.BacktestResult{"single": {single}}, nil
}
