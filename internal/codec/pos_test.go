package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePosRoundTrip(t *testing.T) {
	cases := []Pos{
		{FileID: 0, Offset: 0, Size: 0},
		{FileID: 1, Offset: 4096, Size: 128},
		{FileID: 4294967295, Offset: 1 << 40, Size: 1 << 20},
	}
	for _, p := range cases {
		got := DecodePos(EncodePos(p))
		require.Equal(t, p, got)
	}
}

func TestPosEquality(t *testing.T) {
	a := Pos{FileID: 1, Offset: 10, Size: 5}
	b := Pos{FileID: 1, Offset: 10, Size: 5}
	c := Pos{FileID: 2, Offset: 10, Size: 5}
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
