package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DataFileSuffix is the extension every numbered data segment carries.
const DataFileSuffix = ".data"

const (
	// HintFileName is the fixed filename for the hint sidecar.
	HintFileName = "hint-index"
	// MergeFinFileName is the fixed filename for the merge-completion marker.
	MergeFinFileName = "merge-fin"
	// SeqNoFileName is the fixed filename for the sequence-number checkpoint.
	SeqNoFileName = "seq-no"
	// LockFileName is the fixed filename for the directory's advisory lock.
	LockFileName = "flock"
	// BPTreeFileName is the fixed filename for the persistent B+-tree index.
	BPTreeFileName = "bptree-index"
	// BPTreeBucketName is the single bucket every B+-tree index value lives in.
	BPTreeBucketName = "bitcask-index"
)

// DataFileName formats a segment's filename from its id: {file_id:09d}.data.
// This is the naming grammar spec requires — no prefix, no timestamp
// component — replacing the teacher's seginfo package's
// prefix_NNNNN_timestamp.seg grammar, which has no analogue here.
func DataFileName(fileID uint32) string {
	return fmt.Sprintf("%09d%s", fileID, DataFileSuffix)
}

// ParseDataFileID extracts the numeric id from a data filename produced by
// DataFileName. It returns an error for anything that doesn't match.
func ParseDataFileID(name string) (uint32, error) {
	if !strings.HasSuffix(name, DataFileSuffix) {
		return 0, fmt.Errorf("storage: %q does not have the %q suffix", name, DataFileSuffix)
	}
	stem := strings.TrimSuffix(name, DataFileSuffix)
	id, err := strconv.ParseUint(stem, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("storage: %q is not a valid data file id: %w", name, err)
	}
	return uint32(id), nil
}

// ListDataFileIDs scans dirPath for *.data entries and returns their ids in
// ascending order. This keeps the teacher's seginfo discovery technique —
// sort file identities and trust zero-padding for lexicographic order — but
// applies it to the fixed {file_id:09d}.data grammar instead of segment
// files carrying a prefix and timestamp.
func ListDataFileIDs(dirPath string) ([]uint32, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var ids []uint32
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), DataFileSuffix) {
			continue
		}
		id, err := ParseDataFileID(entry.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// DataFilePath joins dirPath with a data file's formatted name.
func DataFilePath(dirPath string, fileID uint32) string {
	return filepath.Join(dirPath, DataFileName(fileID))
}

// MergeDirPath returns the sibling directory merge rewrites into:
// parent(dirPath)/(base(dirPath)+"-merge").
func MergeDirPath(dirPath string) string {
	dir := filepath.Dir(dirPath)
	base := filepath.Base(dirPath)
	return filepath.Join(dir, base+"-merge")
}
