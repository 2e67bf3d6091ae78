package checkpointer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFilenameEnumerator(t *testing.T) {
	next := FilenameEnumerator(1, "weights", ".bin")
	assert.Equal(t, "weights1.bin", next())
	assert.Equal(t, "weights2.bin", next())
}

func TestNStep(t *testing.T) {
	dir := t.TempDir()
	weights := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	c, err := NewNStep(3, weights, FilenameEnumerator(1,
		filepath.Join(dir, "weights"), ".bin"))
	require.NoError(t, err)

	for step := 1; step <= 10; step++ {
		require.NoError(t, c.Checkpoint(step))
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	data, err := os.ReadFile(filepath.Join(dir, "weights1.bin"))
	require.NoError(t, err)
	var loaded mat.Dense
	require.NoError(t, loaded.UnmarshalBinary(data))
	assert.True(t, mat.Equal(weights, &loaded))

	_, err = NewNStep(0, weights, nil)
	assert.Error(t, err)
}
