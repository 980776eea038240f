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

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validatable is implemented by every persisted record model.
type Validatable interface {
	Validate() error
}

var (
	_ Validatable = User{}
	_ Validatable = Document{}
	_ Validatable = Vocabulary{}
)

// Validate checks a User according to domain rules.
//
// Validation rules:
//   - DisplayName must not be blank
//   - Email, when set, must look like an address
//   - Preferences must hold allowed values
func (u User) Validate() error {
	if strings.TrimSpace(u.DisplayName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUser, ErrEmptyDisplayName)
	}
	if u.Email != "" && !emailPattern.MatchString(u.Email) {
		return fmt.Errorf("%w: %w", ErrInvalidUser, ErrInvalidEmail)
	}
	if err := u.Preferences.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}
	return nil
}

// Validate checks a Document according to domain rules.
//
// Validation rules:
//   - Title must not be blank
//   - ReadingProgress must be within 0-100
//   - Difficulty must be easy, medium or hard
//   - Status must be a known state
//
// NOT validated (derived on mutation):
//   - WordCount, CharacterCount
func (d Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}
	if d.ReadingProgress < 0 || d.ReadingProgress > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrProgressOutOfRange)
	}
	switch d.Difficulty {
	case DocumentEasy, DocumentMedium, DocumentHard:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrInvalidDocumentDifficulty, d.Difficulty)
	}
	switch d.Status {
	case StatusActive, StatusArchived, StatusDeleted:
	default:
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidStatus)
	}
	return nil
}

// Validate checks a Vocabulary according to domain rules.
//
// Validation rules:
//   - Word must not be blank
//   - Difficulty must be within 1-5
//   - MasteryLevel must be within 0-100
func (v Vocabulary) Validate() error {
	if strings.TrimSpace(v.Word) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVocabulary, ErrEmptyWord)
	}
	if v.Difficulty < 1 || v.Difficulty > 5 {
		return fmt.Errorf("%w: %w", ErrInvalidVocabulary, ErrDifficultyOutOfRange)
	}
	if v.MasteryLevel < 0 || v.MasteryLevel > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidVocabulary, ErrMasteryOutOfRange)
	}
	return nil
}
