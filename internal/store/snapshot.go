package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ExportSnapshot writes a zstd-compressed, gob-encoded copy of data to w, a
// smaller and faster alternative to shipping a SQLite file when all a
// downstream process needs is the timetable itself.
func ExportSnapshot(w io.Writer, data TimetableData) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating snapshot compressor: %w", err)
	}
	if _, err := encoder.Write(buf.Bytes()); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("writing compressed snapshot: %w", err)
	}
	return encoder.Close()
}

// ImportSnapshot reads back a snapshot written by ExportSnapshot.
func ImportSnapshot(r io.Reader) (TimetableData, error) {
	var data TimetableData

	decoder, err := zstd.NewReader(r)
	if err != nil {
		return data, fmt.Errorf("creating snapshot decompressor: %w", err)
	}
	defer decoder.Close()

	if err := gob.NewDecoder(decoder).Decode(&data); err != nil {
		return data, fmt.Errorf("decoding snapshot: %w", err)
	}
	return data, nil
}
