package maskgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteCodec(t *testing.T) {
	c := ByteCodec{}

	t.Run("round-trips every byte value", func(t *testing.T) {
		cps, consumed, status := c.DecodeStream([]byte{0x00, 0x41, 0xFF})
		require.Equal(t, StatusOK, status)
		assert.Equal(t, 3, consumed)
		assert.Equal(t, []int32{0x00, 0x41, 0xFF}, cps)
		assert.Equal(t, []byte{0x00, 0x41, 0xFF}, c.EncodeStream(cps))
	})
}

func TestUnicodeCodec(t *testing.T) {
	c := UnicodeCodec{}

	t.Run("decodes multi-byte runes", func(t *testing.T) {
		cps, consumed, status := c.DecodeStream([]byte("a€é"))
		require.Equal(t, StatusOK, status)
		assert.Equal(t, len("a€é"), consumed)
		if diff := cmp.Diff([]int32{'a', '€', 'é'}, cps); diff != "" {
			t.Errorf("decoded codepoints mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []byte("a€é"), c.EncodeStream(cps))
	})

	t.Run("rejects invalid encoding", func(t *testing.T) {
		_, _, status := c.DecodeOne([]byte{0xFF})
		assert.Equal(t, StatusInvalid, status)
	})

	t.Run("reports truncated sequence at end of input", func(t *testing.T) {
		// 0xE2 0x82 is the first two bytes of '€' (0xE2 0x82 0xAC):
		// a valid lead-in that needs one more continuation byte.
		_, _, status := c.DecodeOne([]byte{0xE2, 0x82})
		assert.Equal(t, StatusTruncated, status)
	})

	t.Run("DecodeOne on empty input is bad-args", func(t *testing.T) {
		_, _, status := c.DecodeOne(nil)
		assert.Equal(t, StatusBadArgs, status)
	})

	t.Run("accepts a legitimately-encoded replacement character", func(t *testing.T) {
		// U+FFFD encoded as EF BF BD is a legal scalar, not one of
		// §4.1's rejected cases; it must not be confused with the
		// sentinel utf8.RuneError shares its value with.
		cp, n, status := c.DecodeOne([]byte{0xEF, 0xBF, 0xBD})
		require.Equal(t, StatusOK, status)
		assert.Equal(t, int32(0xFFFD), cp)
		assert.Equal(t, 3, n)
	})
}
