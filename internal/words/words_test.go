package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWords(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeWords(t, "# header comment\npizza\n\n  Volcano  \nrobot\nice cream\nPIZZA\n")
	got := Load(path)
	assert.Equal(t, []string{"PIZZA", "VOLCANO", "ROBOT"}, got)
}

func TestLoadKeepsFileOrder(t *testing.T) {
	path := writeWords(t, "castle\nairplane\ncastle\nbicycle\n")
	got := Load(path)
	assert.Equal(t, []string{"CASTLE", "AIRPLANE", "BICYCLE"}, got)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	got := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, fallback, got)
}

func TestLoadEmptyFileFallsBack(t *testing.T) {
	path := writeWords(t, "# only comments\n\n   \n")
	got := Load(path)
	assert.Equal(t, fallback, got)

	// the fallback is a copy, not the shared slice
	got[0] = "MUTATED"
	assert.Equal(t, "PIZZA", fallback[0])
}
