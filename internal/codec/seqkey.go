package codec

import "encoding/binary"

// NonTxnSeqNo is the reserved sequence number that marks a record as having
// been written outside of any batch transaction.
const NonTxnSeqNo uint64 = 0

// TxnFinKey is the synthetic key used by the transaction finalizer record:
// the raw key, before sequence-number prefixing.
const TxnFinKey = "txn-fin"

// SeqNoKey is the raw key under which the seq-no checkpoint file stores the
// most recently allocated sequence number, written at close and consumed at
// open.
const SeqNoKey = "seq.no"

// MergeFinishedKey is the raw key under which the merge-fin marker stores
// the non-merged boundary file id.
const MergeFinishedKey = "merge.finished"

// EncodeKeyWithSeq prefixes rawKey with a varint encoding of seqNo. Every
// record actually appended to a data file carries a key produced by this
// function; non-transactional writes use seqNo == NonTxnSeqNo.
func EncodeKeyWithSeq(seqNo uint64, rawKey []byte) []byte {
	buf := make([]byte, binary.MaxVarintLen64+len(rawKey))
	n := binary.PutUvarint(buf, seqNo)
	copy(buf[n:], rawKey)
	return buf[:n+len(rawKey)]
}

// ParseKeyWithSeq is the inverse of EncodeKeyWithSeq: it splits a record's
// on-disk key back into its sequence number and raw key.
func ParseKeyWithSeq(onDiskKey []byte) (seqNo uint64, rawKey []byte) {
	seqNo, n := binary.Uvarint(onDiskKey)
	return seqNo, onDiskKey[n:]
}
