package core

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestValidateUser(t *testing.T) {
	valid := NewUser("Ada", "ada", "ada@example.com", testNow)

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{name: "valid user", mutate: func(u *User) {}},
		{name: "empty email allowed", mutate: func(u *User) { u.Email = "" }},
		{name: "blank display name", mutate: func(u *User) { u.DisplayName = "   " }, wantErr: ErrEmptyDisplayName},
		{name: "malformed email", mutate: func(u *User) { u.Email = "ada@example" }, wantErr: ErrInvalidEmail},
		{name: "email with space", mutate: func(u *User) { u.Email = "a da@example.com" }, wantErr: ErrInvalidEmail},
		{name: "bad theme", mutate: func(u *User) { u.Preferences.Theme = "neon" }, wantErr: ErrInvalidPreferences},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			err := u.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidUser) {
				t.Errorf("Validate() error = %v, want wrapped ErrInvalidUser", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	valid := NewDocument("T", "a b c", testNow)

	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr error
	}{
		{name: "valid document", mutate: func(d *Document) {}},
		{name: "progress upper bound", mutate: func(d *Document) { d.ReadingProgress = 100 }},
		{name: "blank title", mutate: func(d *Document) { d.Title = "" }, wantErr: ErrEmptyTitle},
		{name: "negative progress", mutate: func(d *Document) { d.ReadingProgress = -1 }, wantErr: ErrProgressOutOfRange},
		{name: "progress over 100", mutate: func(d *Document) { d.ReadingProgress = 101 }, wantErr: ErrProgressOutOfRange},
		{name: "unknown difficulty", mutate: func(d *Document) { d.Difficulty = "extreme" }, wantErr: ErrInvalidDocumentDifficulty},
		{name: "unknown status", mutate: func(d *Document) { d.Status = Status(9) }, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidDocument) || !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateVocabulary(t *testing.T) {
	valid := NewVocabulary("serendipity", testNow)

	tests := []struct {
		name    string
		mutate  func(v *Vocabulary)
		wantErr error
	}{
		{name: "valid word", mutate: func(v *Vocabulary) {}},
		{name: "difficulty 5", mutate: func(v *Vocabulary) { v.Difficulty = 5 }},
		{name: "blank word", mutate: func(v *Vocabulary) { v.Word = " " }, wantErr: ErrEmptyWord},
		{name: "difficulty 0", mutate: func(v *Vocabulary) { v.Difficulty = 0 }, wantErr: ErrDifficultyOutOfRange},
		{name: "difficulty 6", mutate: func(v *Vocabulary) { v.Difficulty = 6 }, wantErr: ErrDifficultyOutOfRange},
		{name: "negative mastery", mutate: func(v *Vocabulary) { v.MasteryLevel = -1 }, wantErr: ErrMasteryOutOfRange},
		{name: "mastery over 100", mutate: func(v *Vocabulary) { v.MasteryLevel = 101 }, wantErr: ErrMasteryOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid
			tt.mutate(&v)
			err := v.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidVocabulary) || !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
