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

// Package dictionary looks up definitions for vocabulary words.
//
// The Definer interface is the only thing the rest of wordweb depends on.
// Two implementations ship with it:
//
//   - dictionary/openai: asks an OpenAI-compatible chat model, local or hosted
//   - dictionary/mock: a test double with injectable behavior
//
// # Usage
//
//	cfg := dictionary.NewConfig(
//	    dictionary.WithHost("http://localhost:11434/v1"),
//	    dictionary.WithTranslationLanguage("Chinese"),
//	)
//	definer, err := openai.NewDefiner(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	entry, err := definer.Define(ctx, "serendipity", "English")
package dictionary
