package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadMD5(t *testing.T) {
	a := PayloadMD5("kind", []byte("ab"), []byte("c"))
	assert.Len(t, a, 32)
	assert.Equal(t, a, PayloadMD5("kind", []byte("ab"), []byte("c")))
	assert.NotEqual(t, a, PayloadMD5("kind", []byte("a"), []byte("bc")))
	assert.NotEqual(t, a, PayloadMD5("other", []byte("ab"), []byte("c")))
}

func TestFileMD5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	sum, err := FileMD5(path)
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sum)

	_, err = FileMD5(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
