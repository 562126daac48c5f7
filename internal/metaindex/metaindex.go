// Package metaindex implements the sparse meta-index (C6): a persistent
// mapping from token to its byte offset and length in the final index
// file, letting the query engine seek directly to a token's posting list
// instead of scanning. The on-disk format is a compact binary layout —
// chosen over JSON to comfortably clear the 300ms query latency target —
// and is loaded fully into memory at query startup.
package metaindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// Entry is one token's location in the final index file.
type Entry struct {
	Token  string
	Offset uint64
	Length uint32
}

// magic identifies a valid meta-index file and guards against loading a
// stale or unrelated binary blob.
const magic uint32 = 0x48545349 // "HTSI"

// Write persists entries (assumed sorted ascending by token, as produced by
// package rewrite) to path in the binary format: a 4-byte magic, a 4-byte
// entry count, then for each entry a 2-byte token length, an 8-byte offset,
// a 4-byte length, and the token bytes.
func Write(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating meta-index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(entries)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing meta-index header: %w", err)
	}

	for _, e := range entries {
		if len(e.Token) > 0xFFFF {
			return fmt.Errorf("token %q exceeds maximum length", e.Token)
		}
		var rec [14]byte
		binary.LittleEndian.PutUint16(rec[0:2], uint16(len(e.Token)))
		binary.LittleEndian.PutUint64(rec[2:10], e.Offset)
		binary.LittleEndian.PutUint32(rec[10:14], e.Length)
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("writing meta-index entry: %w", err)
		}
		if _, err := w.WriteString(e.Token); err != nil {
			return fmt.Errorf("writing meta-index token: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing meta-index file: %w", err)
	}
	return f.Sync()
}

// Location is the (offset, length) pair a loaded meta-index maps a token
// to.
type Location struct {
	Offset uint64
	Length uint32
}

// Index is the fully-loaded, query-time meta-index: an immutable map from
// token to its final-index byte range.
type Index struct {
	locations map[string]Location
}

// Load reads a meta-index file written by Write into memory.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta-index file: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("meta-index file too short")
	}
	if binary.LittleEndian.Uint32(data[0:4]) != magic {
		return nil, fmt.Errorf("meta-index file has invalid magic")
	}
	count := binary.LittleEndian.Uint32(data[4:8])

	locations := make(map[string]Location, count)
	pos := 8
	for i := uint32(0); i < count; i++ {
		if pos+14 > len(data) {
			return nil, fmt.Errorf("meta-index file truncated at entry %d", i)
		}
		tokenLen := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
		offset := binary.LittleEndian.Uint64(data[pos+2 : pos+10])
		length := binary.LittleEndian.Uint32(data[pos+10 : pos+14])
		pos += 14
		if pos+tokenLen > len(data) {
			return nil, fmt.Errorf("meta-index file truncated at token for entry %d", i)
		}
		token := string(data[pos : pos+tokenLen])
		pos += tokenLen
		locations[token] = Location{Offset: offset, Length: length}
	}

	return &Index{locations: locations}, nil
}

// Lookup returns the byte range for token, if present.
func (idx *Index) Lookup(token string) (Location, bool) {
	loc, ok := idx.locations[token]
	return loc, ok
}

// Len returns the number of tokens in the meta-index.
func (idx *Index) Len() int {
	return len(idx.locations)
}
