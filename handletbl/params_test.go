package handletbl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 32, p.Purge.BASE)
	assert.Equal(t, 4, p.Purge.VALID_RECIPROCAL)
	assert.Equal(t, 0.5, p.Purge.MU)
	assert.Equal(t, 1<<20, p.Handle.MAX_TRIES)
	assert.Nil(t, p.Validate())
}

func TestParseParamsOverride(t *testing.T) {
	p, err := ParseParams([]byte("purge:\n  base: 8\n  mu: 0.25\n"))
	require.Nil(t, err)
	assert.Equal(t, 8, p.Purge.BASE)
	assert.Equal(t, 0.25, p.Purge.MU)
	assert.Equal(t, 4, p.Purge.VALID_RECIPROCAL)
	assert.Equal(t, 1<<20, p.Handle.MAX_TRIES)
}

func TestParseParamsInvalid(t *testing.T) {
	for _, s := range []string{
		"purge:\n  base: 0\n",
		"purge:\n  valid_reciprocal: 0\n",
		"purge:\n  mu: 0\n",
		"purge:\n  mu: 1.5\n",
		"handle:\n  max_tries: 0\n",
		"purge: [",
	} {
		_, err := ParseParams([]byte(s))
		assert.NotNil(t, err, "%q", s)
	}
}

func TestReadParams(t *testing.T) {
	pn := filepath.Join(t.TempDir(), "params.yaml")
	err := os.WriteFile(pn, []byte("handle:\n  max_tries: 16\n"), 0644)
	require.Nil(t, err)
	p, err := ReadParams(pn)
	require.Nil(t, err)
	assert.Equal(t, 16, p.Handle.MAX_TRIES)
	assert.Equal(t, 32, p.Purge.BASE)

	_, err = ReadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}

func TestNewHandleTableBadParams(t *testing.T) {
	p := DefaultParams()
	p.Purge.MU = 2
	assert.Panics(t, func() { NewHandleTable[tobj](p) })
}
