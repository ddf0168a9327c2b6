package maskgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaskFileGenerator_InlineMask(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	g, err := NewMaskFileGenerator(codec, base, "?d?d")
	require.NoError(t, err)

	m, ok := g.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(100), m.Len())

	_, ok = g.Next()
	assert.False(t, ok)
	assert.True(t, g.Good())
}

func TestNewMaskFileGenerator_FileWithCommentsAndBlankLines(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	dir := t.TempDir()
	path := filepath.Join(dir, "masks.hcmask")
	content := "# header comment\n\n?d?d\n01,?1?1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := NewMaskFileGenerator(codec, base, path)
	require.NoError(t, err)

	var lens []uint64
	for {
		m, ok := g.Next()
		if !ok {
			break
		}
		lens = append(lens, m.Len())
	}
	require.True(t, g.Good())
	assert.Equal(t, []uint64{100, 4}, lens)
}

func TestNewMaskFileGenerator_StickyErrorOnBadLine(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	dir := t.TempDir()
	path := filepath.Join(dir, "masks.hcmask")
	require.NoError(t, os.WriteFile(path, []byte("?d\n?z\n?d\n"), 0o644))

	g, err := NewMaskFileGenerator(codec, base, path)
	require.NoError(t, err)

	_, ok := g.Next()
	require.True(t, ok) // first line is fine

	_, ok = g.Next()
	require.False(t, ok)
	require.False(t, g.Good())
	assert.Equal(t, ErrParse, g.Err().(*Error).Kind)
	assert.Equal(t, 2, g.Err().(*Error).Line)

	// Reset only rewinds the cursor; the sticky error survives, matching
	// the "Reset legitimately follows only a clean counting pass" model.
	g.Reset()
	_, ok = g.Next()
	assert.False(t, ok)
	assert.False(t, g.Good())
}

func TestNewMaskFileGenerator_Reset(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	g, err := NewMaskFileGenerator(codec, base, "?d")
	require.NoError(t, err)

	_, ok := g.Next()
	require.True(t, ok)
	_, ok = g.Next()
	require.False(t, ok)

	g.Reset()
	_, ok = g.Next()
	require.True(t, ok)
	assert.True(t, g.Good())
}
