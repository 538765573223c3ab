// Package codec implements the on-disk framing for one log record: the
// append-only unit that every data file, hint file, and merge-completion
// marker is built out of.
package codec

import (
	"encoding/binary"
	"hash/crc32"
)

// RecordType distinguishes the three kinds of record that can appear in a
// data file.
type RecordType byte

const (
	// RecordNormal is an ordinary key/value write.
	RecordNormal RecordType = 1
	// RecordDeleted is a tombstone: its value is always empty.
	RecordDeleted RecordType = 2
	// RecordTxnFinished commits every buffered record sharing its sequence
	// number; its key is the synthetic finalizer sentinel and its value is
	// always empty.
	RecordTxnFinished RecordType = 3
)

// MaxHeaderSize is the largest a record's framing prefix (type byte plus two
// varint-encoded lengths) can ever be: 1 + 5 + 5.
const MaxHeaderSize = 1 + binary.MaxVarintLen32 + binary.MaxVarintLen32

// crcSize is the width of the trailing CRC32 checksum, in bytes.
const crcSize = 4

// Record is the decoded form of one framed log entry.
type Record struct {
	Type  RecordType
	Key   []byte
	Value []byte
}

// Encode serializes r into its wire form:
//
//	type(1) | key_len(varint) | val_len(varint) | key | value | crc32(4, LE)
//
// CRC is computed over every byte preceding the trailing checksum field.
func Encode(r Record) []byte {
	header := make([]byte, MaxHeaderSize)
	header[0] = byte(r.Type)
	n := 1
	n += binary.PutUvarint(header[n:], uint64(len(r.Key)))
	n += binary.PutUvarint(header[n:], uint64(len(r.Value)))

	buf := make([]byte, n+len(r.Key)+len(r.Value)+crcSize)
	copy(buf, header[:n])
	copy(buf[n:], r.Key)
	copy(buf[n+len(r.Key):], r.Value)

	sum := crc32.ChecksumIEEE(buf[:n+len(r.Key)+len(r.Value)])
	binary.LittleEndian.PutUint32(buf[n+len(r.Key)+len(r.Value):], sum)
	return buf
}

// EncodedSize returns the exact number of bytes Encode(r) would produce,
// without allocating.
func EncodedSize(r Record) int {
	var lenBuf [binary.MaxVarintLen64]byte
	keyLenSize := binary.PutUvarint(lenBuf[:], uint64(len(r.Key)))
	valLenSize := binary.PutUvarint(lenBuf[:], uint64(len(r.Value)))
	return 1 + keyLenSize + valLenSize + len(r.Key) + len(r.Value) + crcSize
}

// Header is the decoded framing prefix read ahead of the key and value
// payload, together with how many bytes it actually occupied on disk (which
// can be less than MaxHeaderSize since the varints are variable-width).
type Header struct {
	Type       RecordType
	KeyLen     uint64
	ValueLen   uint64
	HeaderSize int
}

// IsEOF reports whether a decoded header is the clean-end-of-scan sentinel:
// both lengths zero. Callers must check this before trusting KeyLen/ValueLen.
func (h Header) IsEOF() bool {
	return h.KeyLen == 0 && h.ValueLen == 0
}

// DecodeHeader parses the framing prefix from buf, which must contain at
// least MaxHeaderSize bytes (callers read a fixed MaxHeaderSize-byte window
// and pass it here; trailing garbage beyond the real header is ignored).
func DecodeHeader(buf []byte) Header {
	recordType := RecordType(buf[0])
	keyLen, keyN := binary.Uvarint(buf[1:])
	valLen, valN := binary.Uvarint(buf[1+keyN:])
	return Header{
		Type:       recordType,
		KeyLen:     keyLen,
		ValueLen:   valLen,
		HeaderSize: 1 + keyN + valN,
	}
}

// VerifyCRC recomputes the checksum over header+key+value and reports
// whether it matches the trailing 4-byte CRC found in full (which must be
// header||key||value||crc, i.e. exactly what Encode produced).
func VerifyCRC(full []byte) bool {
	if len(full) < crcSize {
		return false
	}
	body := full[:len(full)-crcSize]
	want := binary.LittleEndian.Uint32(full[len(full)-crcSize:])
	return crc32.ChecksumIEEE(body) == want
}
