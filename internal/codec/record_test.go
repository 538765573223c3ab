package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	r := Record{Type: RecordNormal, Key: []byte("hello"), Value: []byte("world")}
	buf := Encode(r)

	require.Equal(t, EncodedSize(r), len(buf))
	require.True(t, VerifyCRC(buf))

	header := DecodeHeader(buf)
	require.Equal(t, RecordNormal, header.Type)
	require.EqualValues(t, len(r.Key), header.KeyLen)
	require.EqualValues(t, len(r.Value), header.ValueLen)
	require.False(t, header.IsEOF())

	key := buf[header.HeaderSize : header.HeaderSize+len(r.Key)]
	value := buf[header.HeaderSize+len(r.Key) : header.HeaderSize+len(r.Key)+len(r.Value)]
	require.Equal(t, r.Key, key)
	require.Equal(t, r.Value, value)
}

func TestEncodeTombstoneHasNoValue(t *testing.T) {
	r := Record{Type: RecordDeleted, Key: []byte("gone")}
	buf := Encode(r)

	header := DecodeHeader(buf)
	require.Equal(t, RecordDeleted, header.Type)
	require.EqualValues(t, 0, header.ValueLen)
	require.True(t, VerifyCRC(buf))
}

func TestVerifyCRCDetectsCorruption(t *testing.T) {
	buf := Encode(Record{Type: RecordNormal, Key: []byte("k"), Value: []byte("v")})
	buf[len(buf)-5] ^= 0xFF
	require.False(t, VerifyCRC(buf))
}

func TestHeaderIsEOF(t *testing.T) {
	require.True(t, Header{}.IsEOF())
	require.False(t, Header{KeyLen: 1}.IsEOF())
}

func TestEncodedSizeMatchesVariableWidthVarints(t *testing.T) {
	small := Record{Type: RecordNormal, Key: []byte("k"), Value: []byte("v")}
	big := Record{Type: RecordNormal, Key: make([]byte, 1<<20), Value: make([]byte, 1<<20)}

	require.Equal(t, len(Encode(small)), EncodedSize(small))
	require.Equal(t, len(Encode(big)), EncodedSize(big))
}
