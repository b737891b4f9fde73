package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntList_Set(t *testing.T) {
	var l intList
	require.NoError(t, l.Set("3, 4,5"))
	assert.Equal(t, intList{3, 4, 5}, l)
	assert.Equal(t, "3,4,5", l.String())

	assert.Error(t, l.Set("3,x"))
	assert.Error(t, l.Set(","))
}

func TestLatestResults(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "optimization-results-p5-high-001.json")
	newer := filepath.Join(dir, "optimization-results-p5-high-002.json")
	require.NoError(t, os.WriteFile(older, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "momentum-results-grid-001.json"), []byte("{}"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	path, err := latestResults(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, path)
}

func TestLatestResults_Empty(t *testing.T) {
	_, err := latestResults(t.TempDir())
	assert.Error(t, err)
}

func TestDataFlags_Validate(t *testing.T) {
	assert.NoError(t, (&dataFlags{difficulty: "high"}).validate())
	assert.Error(t, (&dataFlags{difficulty: "extreme"}).validate())
	assert.Error(t, (&dataFlags{difficulty: "high", limit: -1}).validate())
}
