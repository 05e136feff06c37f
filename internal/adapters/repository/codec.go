package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/rankwatch/internal/domain/model"
)

func encodeRecord(rec model.Record) ([]byte, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	rec.ObservedAt = rec.ObservedAt.UTC()
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(raw, '\n'), nil
}

// decodeRecord rejects empty documents, unknown shapes and records that fail
// validation, all as ErrCorrupt.
func decodeRecord(raw []byte) (model.Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Record{}, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	var rec model.Record
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return model.Record{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := rec.Validate(); err != nil {
		return model.Record{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return rec, nil
}
