package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeParseKeyWithSeqRoundTrip(t *testing.T) {
	cases := []struct {
		seqNo uint64
		key   string
	}{
		{NonTxnSeqNo, "foo"},
		{1, "bar"},
		{1 << 40, "a much longer key used for a batch write"},
	}
	for _, c := range cases {
		encoded := EncodeKeyWithSeq(c.seqNo, []byte(c.key))
		seqNo, rawKey := ParseKeyWithSeq(encoded)
		require.Equal(t, c.seqNo, seqNo)
		require.Equal(t, c.key, string(rawKey))
	}
}

func TestNonTxnSeqNoIsZero(t *testing.T) {
	require.EqualValues(t, 0, NonTxnSeqNo)
}
