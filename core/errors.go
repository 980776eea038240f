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

package core

import "errors"

// Validation errors. The Err*Invalid* values classify the record; the others
// describe the specific rule that failed and are wrapped by them.
var (
	// ErrInvalidUser indicates a User failed validation.
	ErrInvalidUser = errors.New("invalid user")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidVocabulary indicates a Vocabulary failed validation.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")

	// ErrInvalidPreferences indicates a preference value is not allowed.
	ErrInvalidPreferences = errors.New("invalid preferences")

	// ErrEmptyDisplayName indicates the user display name is blank.
	ErrEmptyDisplayName = errors.New("display name cannot be empty")

	// ErrInvalidEmail indicates the email does not look like an address.
	ErrInvalidEmail = errors.New("email address is malformed")

	// ErrEmptyTitle indicates the document title is blank.
	ErrEmptyTitle = errors.New("document title cannot be empty")

	// ErrProgressOutOfRange indicates reading progress outside 0-100.
	ErrProgressOutOfRange = errors.New("reading progress must be between 0 and 100")

	// ErrInvalidStatus indicates an unrecognized document status.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidDocumentDifficulty indicates a document difficulty other than easy, medium or hard.
	ErrInvalidDocumentDifficulty = errors.New("invalid document difficulty")

	// ErrEmptyWord indicates the vocabulary word is blank.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrDifficultyOutOfRange indicates a vocabulary difficulty outside 1-5.
	ErrDifficultyOutOfRange = errors.New("difficulty must be between 1 and 5")

	// ErrMasteryOutOfRange indicates a mastery level outside 0-100.
	ErrMasteryOutOfRange = errors.New("mastery level must be between 0 and 100")

	// ErrInvalidReviewType indicates an unrecognized review type.
	ErrInvalidReviewType = errors.New("invalid review type")

	// ErrUnknownPreference indicates a preference key that is not recognized.
	ErrUnknownPreference = errors.New("unknown preference")

	// ErrNotFound indicates a child item (note, bookmark, context) does not exist.
	ErrNotFound = errors.New("item not found")
)
