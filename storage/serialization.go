// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MarshalExport serializes an Export in a compact binary form. Entries are
// written in key order so equal exports produce equal bytes.
func MarshalExport(e *Export) []byte {
	keys := slices.Sorted(maps.Keys(e.Data))
	micros := e.ExportedAt.UnixMicro()

	size := ord.String.Size(e.SchemaVersion) +
		varint.Int64.Size(micros) +
		varint.Uint64.Size(uint64(len(keys)))
	for _, k := range keys {
		size += ord.String.Size(k) + ord.String.Size(e.Data[k])
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(e.SchemaVersion, buf)
	n += varint.Int64.Marshal(micros, buf[n:])
	n += varint.Uint64.Marshal(uint64(len(keys)), buf[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(e.Data[k], buf[n:])
	}
	return buf
}

// UnmarshalExport deserializes bytes produced by MarshalExport.
func UnmarshalExport(data []byte) (*Export, error) {
	version, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: schema version: %w", ErrSerializationFailed, err)
	}
	micros, m, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %w", ErrSerializationFailed, err)
	}
	n += m
	count, m, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: entry count: %w", ErrSerializationFailed, err)
	}
	n += m
	// every entry needs at least two length bytes
	if count > uint64(len(data)-n)/2 {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", ErrTruncatedData, count, len(data)-n)
	}

	entries := make(map[string]string, count)
	for i := uint64(0); i < count; i++ {
		key, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d key: %w", ErrSerializationFailed, i, err)
		}
		n += m
		value, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d value: %w", ErrSerializationFailed, i, err)
		}
		n += m
		entries[key] = value
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}

	return &Export{
		ExportedAt:    time.UnixMicro(micros).UTC(),
		SchemaVersion: version,
		Data:          entries,
	}, nil
}
