package generator

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/work/Mod/include/Mod/Mod.h"

	require.NoError(t, writeFileAtomic(fs, path, []byte("first")))
	require.NoError(t, writeFileAtomic(fs, path, []byte("second")))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := afero.ReadDir(fs, "/work/Mod/include/Mod")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Mod.h", entries[0].Name())
}
