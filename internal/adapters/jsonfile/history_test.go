package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/kenolab/internal/adapters/jsonfile"
	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseHistory_DrawnAndHitsMisses(t *testing.T) {
	data := `[
		{"drawn": [1, 2, 3], "round": 55},
		{"hits": [4], "misses": [5, 6]}
	]`
	rounds, err := jsonfile.ParseHistory([]byte(data), 3)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	assert.Equal(t, domain.NewNumberSet(1, 2, 3), rounds[0].Drawn)
	assert.Equal(t, domain.NewNumberSet(4, 5, 6), rounds[1].Drawn)
	assert.Equal(t, 1, rounds[1].Index)
}

func TestParseHistory_MalformedRecordsDegrade(t *testing.T) {
	data := `[
		{"drawn": [1, 2, 3]},
		{"something": "else"},
		{"drawn": "oops"},
		{"drawn": [0, 41]},
		{"drawn": [7, 8, 9]}
	]`
	rounds, err := jsonfile.ParseHistory([]byte(data), 3)
	require.NoError(t, err)
	require.Len(t, rounds, 5)

	for i := 1; i <= 3; i++ {
		assert.Zero(t, rounds[i].Drawn.Len(), "round %d", i)
	}
	assert.Equal(t, domain.NewNumberSet(7, 8, 9), rounds[4].Drawn)
}

func TestParseHistory_CardinalityMismatchIsKept(t *testing.T) {
	rounds, err := jsonfile.ParseHistory([]byte(`[{"drawn": [1, 2]}]`), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, rounds[0].Drawn.Len())
}

func TestParseHistory_NotAnArray(t *testing.T) {
	_, err := jsonfile.ParseHistory([]byte(`{"drawn": [1]}`), 10)
	assert.Error(t, err)
}

func TestHistoryFile_Limit(t *testing.T) {
	path := writeFile(t, "history.json", `[{"drawn":[1]},{"drawn":[2]},{"drawn":[3]}]`)

	rounds, err := jsonfile.NewHistoryFile(path, 0, 2).LoadHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, domain.NewNumberSet(2), rounds[0].Drawn)
	assert.Equal(t, 0, rounds[0].Index)
	assert.Equal(t, 1, rounds[1].Index)
}

func TestHistoryFile_Missing(t *testing.T) {
	_, err := jsonfile.NewHistoryFile(filepath.Join(t.TempDir(), "nope.json"), 10, 0).LoadHistory(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPayoutFile_Load(t *testing.T) {
	path := writeFile(t, "multis.json", `{"high": {"5": {"3": 3, "4": 20, "5": 300}}}`)

	table, err := jsonfile.NewPayoutFile(path).LoadPayouts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300.0, table.Multiplier(domain.DifficultyHigh, 5, 5))
	assert.Equal(t, 0.0, table.Multiplier(domain.DifficultyHigh, 5, 2))
}

func TestPayoutFile_RejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"bad json":      `{"high": [1,2]}`,
		"size range":    `{"high": {"11": {"11": 1}}}`,
		"hits > size":   `{"high": {"3": {"4": 1}}}`,
		"negative mult": `{"high": {"3": {"3": -1}}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "multis.json", content)
			_, err := jsonfile.NewPayoutFile(path).LoadPayouts(context.Background())
			assert.Error(t, err)
		})
	}
}
