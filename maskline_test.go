package maskgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRegistry(t *testing.T, unicode bool) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, unicode))
	return r
}

func TestParseMaskLine_CommentsAndBlankLines(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	m, err := ParseMaskLine(codec, base, []byte("# a comment\n"))
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = ParseMaskLine(codec, base, []byte("\n"))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestParseMaskLine_EphemeralCharset(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	m, err := ParseMaskLine(codec, base, []byte("01,?1?1?1\n"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, uint64(8), m.Len())
}

func TestParseMaskLine_UpToNineEphemeralCharsets(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	line := "a,b,c,d,e,f,g,h,i,?9\n"
	m, err := ParseMaskLine(codec, base, []byte(line))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Width())

	overflowLine := "a,b,c,d,e,f,g,h,i,j,?10\n"
	_, err = ParseMaskLine(codec, base, []byte(overflowLine))
	require.Error(t, err)
	assert.Equal(t, ErrParse, err.(*Error).Kind)
}

func TestParseMaskLine_EscapedComma(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	m, err := ParseMaskLine(codec, base, []byte(`a\,b`+"\n"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Width()) // literal 'a', ',', 'b'
}

func TestParseMaskLine_LeadingCharsetDoesNotLeakIntoBase(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	// Defines an ephemeral charset '1' = "01", used by the body as ?1.
	m, err := ParseMaskLine(codec, base, []byte("01,?1\n"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, uint64(2), m.Len())

	// base registry itself is untouched by this line's ephemeral binding.
	assert.False(t, base.Defined('1'))
}

func TestParseInlineMask_LiteralAndReference(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	m, err := ParseInlineMask(codec, base, []byte("?d?d?d?d?l?l"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, uint64(6760000), m.Len())
}

func TestParseInlineMask_DoubleQuestionMarkIsLiteral(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	m, err := ParseInlineMask(codec, base, []byte("a??b"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Width())
}

func TestParseMaskLine_EmptyBodyIsRejected(t *testing.T) {
	base := baseRegistry(t, false)
	codec := ByteCodec{}

	_, err := ParseMaskLine(codec, base, []byte("abc,\n"))
	require.Error(t, err)
	assert.Equal(t, ErrEmpty, err.(*Error).Kind)
}

func TestSplitLineTokens(t *testing.T) {
	toks, err := splitLineTokens([]byte(`a\,b,c\\d,e`))
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "a,b", string(toks[0]))
	assert.Equal(t, `c\d`, string(toks[1]))
	assert.Equal(t, "e", string(toks[2]))
}
