package referrer

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	snapshotHeaderSize = 4  // num_entries(4)
	snapshotEntrySize  = 24 // address(20) + ratio(4)
)

// SerializeSnapshot encodes entries to binary format.
func SerializeSnapshot(entries []Entry) ([]byte, error) {
	if len(entries) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(entries))
	}
	buf := make([]byte, snapshotHeaderSize+snapshotEntrySize*len(entries))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(entries)))
	offset := snapshotHeaderSize
	for _, e := range entries {
		copy(buf[offset:offset+20], e.Address[:])
		offset += 20
		binary.BigEndian.PutUint32(buf[offset:offset+4], e.RatioPerMillion)
		offset += 4
	}
	return buf, nil
}

// DeserializeSnapshot decodes binary data into entries. Every ratio is
// checked against MaxRatio.
func DeserializeSnapshot(data []byte) ([]Entry, error) {
	if len(data) < snapshotHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidSnapshot, len(data))
	}
	numEntries := int(binary.BigEndian.Uint32(data[0:4]))
	expectedSize := snapshotHeaderSize + snapshotEntrySize*numEntries
	if len(data) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes for %d entries, got %d",
			ErrInvalidSnapshot, expectedSize, numEntries, len(data))
	}

	entries := make([]Entry, numEntries)
	offset := snapshotHeaderSize
	for i := range entries {
		copy(entries[i].Address[:], data[offset:offset+20])
		offset += 20
		entries[i].RatioPerMillion = binary.BigEndian.Uint32(data[offset : offset+4])
		offset += 4
		if err := ValidateRatio(entries[i].RatioPerMillion); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidSnapshot, i, err)
		}
	}
	return entries, nil
}
