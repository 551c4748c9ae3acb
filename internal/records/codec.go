package records

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts records to and from their on-disk representation.
type Codec interface {
	Encode(rec Record) ([]byte, error)
	Decode(data []byte) (Record, error)
}

// MsgpackCodec stores records as a msgpack map with "params" and "perf_stats" keys.
type MsgpackCodec struct{}

// Encode serializes a record.
func (MsgpackCodec) Encode(rec Record) ([]byte, error) {
	if rec.Params == nil {
		return nil, fmt.Errorf("failed to encode record: %w: params missing", ErrNotRecord)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a record. Integers decode as int64/uint64 and floats as float64 so
// that parameter values compare equal regardless of the width the writer chose.
func (MsgpackCodec) Decode(data []byte) (Record, error) {
	var rec Record

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if rec.Params == nil {
		return Record{}, fmt.Errorf("%w: params missing", ErrNotRecord)
	}
	if rec.PerfStats == nil {
		rec.PerfStats = map[string]any{}
	}

	return rec, nil
}
