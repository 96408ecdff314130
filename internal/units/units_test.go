package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input string
		want  MemoryUnit
	}{
		{"b", Bytes},
		{"B", Bytes},
		{"bytes", Bytes},
		{"BYTES", Bytes},
		{"kb", KB},
		{"KB", KB},
		{"kib", KiB},
		{"KiB", KiB},
		{"mb", MB},
		{"MiB", MiB},
		{"gb", GB},
		{"GIB", GiB},
		{"tb", TB},
		{"TiB", TiB},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUnit(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnitRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "kilobytes", "k", "pib", "1024"} {
		_, err := ParseUnit(input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, ErrInvalidUnit))
		assert.Contains(t, err.Error(), Supported)
	}
}

func TestConvertBytes(t *testing.T) {
	const n = uint64(5_000_000_000_000)
	assert.Equal(t, n, ConvertBytes(n, Bytes))
	assert.Equal(t, uint64(5_000_000_000), ConvertBytes(n, KB))
	assert.Equal(t, uint64(4_882_812_500), ConvertBytes(n, KiB))
	assert.Equal(t, uint64(5_000_000), ConvertBytes(n, MB))
	assert.Equal(t, uint64(4_768_371), ConvertBytes(n, MiB))
	assert.Equal(t, uint64(5_000), ConvertBytes(n, GB))
	assert.Equal(t, uint64(4_656), ConvertBytes(n, GiB))
	assert.Equal(t, uint64(5), ConvertBytes(n, TB))
	assert.Equal(t, uint64(4), ConvertBytes(n, TiB))
	assert.Equal(t, n, ConvertBytes(n, MemoryUnit(42)))
}

func TestConvertBytesRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 1023, 1024, 1025, 4096000000, 16777216000, 1<<50 + 12345}
	all := []MemoryUnit{Bytes, KB, KiB, MB, MiB, GB, GiB, TB, TiB}

	for _, x := range values {
		back := ConvertBytes(ConvertBytes(x, KiB)*1024, Bytes)
		assert.LessOrEqual(t, back, x)
		assert.Less(t, x-back, uint64(1024))

		for _, u := range all {
			d := Divisor(u)
			restored := ConvertBytes(x, u) * d
			assert.LessOrEqual(t, restored, x, "unit %s", u)
			assert.Less(t, x-restored, d, "unit %s", u)
		}
	}
}

func TestString(t *testing.T) {
	for _, u := range []MemoryUnit{Bytes, KB, KiB, MB, MiB, GB, GiB, TB, TiB} {
		parsed, err := ParseUnit(u.String())
		require.NoError(t, err)
		assert.Equal(t, u, parsed)
	}
}
