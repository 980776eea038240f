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

// Package storage provides the key-value store adapter for wordweb.
//
// An Adapter sits on top of any KV implementation (see storage/badger) and
// gives every record a namespaced key and a metadata envelope:
//
//	wordweb_<collection>_<id> -> {"metadata": {...}, "data": <payload>}
//
// Payloads above the compression threshold are zstd compressed and base64
// encoded; the envelope's compressed flag records this so Load can reverse
// it. Values written by older versions without an envelope are returned as
// they are.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	adapter, err := storage.NewAdapter(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = adapter.Save(ctx, storage.CollectionDocument, doc.ID, doc)
//
// # Failure reporting
//
// Every operation returns an error instead of panicking. When a save fails
// because the store is full, records older than the retention window are
// evicted and the save is retried once.
//
// # Context Support
//
// All methods accept context.Context and pass it to the KV store.
package storage
