package stats

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := map[uint64]string{
		0:                      "0B",
		1023:                   "1023B",
		1024:                   "1.0KiB",
		1536:                   "1.5KiB",
		12 * 1024 * 1024:       "12.0MiB",
		3 * 1024 * 1024 * 1024: "3.0GiB",
	}
	for in, want := range tests {
		require.Equal(t, want, FormatBytes(in))
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()

	s, err := NewSampler()
	require.NoError(t, err)
	sample, err := s.Sample()
	require.NoError(t, err)
	require.Greater(t, sample.RSS, uint64(0))
	require.Contains(t, sample.String(), "rss ")
}
