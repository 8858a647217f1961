package fs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	afs := afero.NewMemMapFs()

	require.NoError(t, WriteFileAtomic(afs, "/out/summary.csv", []byte("a,b\n")))

	data, err := afero.ReadFile(afs, "/out/summary.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	// No temp file survives a successful write.
	exists, err := afero.Exists(afs, "/out/summary.csv.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, WriteFileAtomic(afs, "/f", []byte("old")))
	require.NoError(t, WriteFileAtomic(afs, "/f", []byte("new")))

	data, err := afero.ReadFile(afs, "/f")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
