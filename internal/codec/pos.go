package codec

import "encoding/binary"

// Pos is the in-memory locator every live key in the index maps to: which
// data file holds its most recent record, at what byte offset, and how many
// bytes the record occupies. The size field exists purely so the engine can
// add a displaced record's length to the reclaim-size counter without a second
// read.
type Pos struct {
	FileID uint32
	Offset uint64
	Size   uint32
}

// EncodePos concatenates three varints (file id, offset, size). This is the
// wire form written as a hint-file record's value and as a persistent
// B+-tree backend's stored value.
func EncodePos(p Pos) []byte {
	buf := make([]byte, binary.MaxVarintLen32*2+binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, uint64(p.FileID))
	n += binary.PutUvarint(buf[n:], p.Offset)
	n += binary.PutUvarint(buf[n:], uint64(p.Size))
	return buf[:n]
}

// DecodePos is the inverse of EncodePos.
func DecodePos(buf []byte) Pos {
	fileID, n := binary.Uvarint(buf)
	offset, n2 := binary.Uvarint(buf[n:])
	size, _ := binary.Uvarint(buf[n+n2:])
	return Pos{FileID: uint32(fileID), Offset: offset, Size: uint32(size)}
}
