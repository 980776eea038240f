package storage

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Envelope is the metadata stored alongside every record payload.
type Envelope struct {
	Type          string    `json:"type"`
	ID            string    `json:"id"`
	SavedAt       time.Time `json:"savedAt"`
	SchemaVersion string    `json:"schemaVersion"`
	Compressed    bool      `json:"compressed"`
	Encrypted     bool      `json:"encrypted"`
}

// storedRecord is the physical layout of an enveloped value.
type storedRecord struct {
	Metadata *Envelope      `json:"metadata"`
	Data     json.RawMessage `json:"data"`
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compress(payload []byte) string {
	return base64.StdEncoding.EncodeToString(zstdEncoder.EncodeAll(payload, nil))
}

func decompress(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return zstdDecoder.DecodeAll(raw, nil)
}

// encodeRecord wraps payload in an envelope, compressing it when it is longer
// than threshold bytes.
func encodeRecord(env Envelope, payload []byte, threshold int) ([]byte, error) {
	data := json.RawMessage(payload)
	if threshold >= 0 && len(payload) > threshold {
		packed, err := json.Marshal(compress(payload))
		if err != nil {
			return nil, err
		}
		data = packed
		env.Compressed = true
	}
	return json.Marshal(storedRecord{Metadata: &env, Data: data})
}

// parseEnvelope returns the envelope of raw, or nil for values that are not
// enveloped. A non-nil error means raw is not JSON at all.
func parseEnvelope(raw []byte) (*storedRecord, error) {
	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Metadata == nil || len(rec.Data) == 0 {
		return nil, nil
	}
	return &rec, nil
}

// decodeRecord reverses encodeRecord. Values without an envelope are
// returned unchanged when they are JSON and as a JSON string otherwise.
func decodeRecord(raw []byte) (json.RawMessage, *Envelope, error) {
	rec, err := parseEnvelope(raw)
	if err != nil || rec == nil {
		return legacyValue(raw), nil, nil
	}
	env := rec.Metadata
	if env.Encrypted {
		return nil, env, ErrUnsupportedEncoding
	}
	if !env.Compressed {
		return rec.Data, env, nil
	}
	var packed string
	if err := json.Unmarshal(rec.Data, &packed); err != nil {
		return nil, env, fmt.Errorf("%w: compressed payload is not a string", ErrCorruptRecord)
	}
	payload, err := decompress(packed)
	if err != nil {
		return nil, env, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return payload, env, nil
}

func legacyValue(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return json.RawMessage(bytes.Clone(raw))
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}
