package core

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// PeriodStats is a weekly or monthly activity rollup.
type PeriodStats struct {
	DocumentsRead int `json:"documentsRead"`
	WordsLearned  int `json:"wordsLearned"`
	ReadingTime   int `json:"readingTime"`
}

// WeeklyGoal holds the targets a user sets for one week.
type WeeklyGoal struct {
	DocumentsToRead   int `json:"documentsToRead"`
	WordsToLearn      int `json:"wordsToLearn"`
	ReadingTimeTarget int `json:"readingTimeTarget"`
}

// Statistics aggregates a user's activity. Reading time is in minutes.
type Statistics struct {
	TotalDocuments   int         `json:"totalDocuments"`
	TotalWords       int         `json:"totalWords"`
	TotalReadingTime int         `json:"totalReadingTime"`
	DocumentsRead    int         `json:"documentsRead"`
	VocabularySize   int         `json:"vocabularySize"`
	LoginCount       int         `json:"loginCount"`
	LastActivityAt   *time.Time  `json:"lastActivityAt"`
	WeeklyStats      PeriodStats `json:"weeklyStats"`
	MonthlyStats     PeriodStats `json:"monthlyStats"`
	WeeklyGoal       WeeklyGoal  `json:"weeklyGoal"`
	Achievements     []string    `json:"achievements"`
}

// DefaultWeeklyGoal returns the goal assigned to new users.
func DefaultWeeklyGoal() WeeklyGoal {
	return WeeklyGoal{DocumentsToRead: 5, WordsToLearn: 50, ReadingTimeTarget: 300}
}

// DefaultStatistics returns zeroed counters with the default weekly goal.
func DefaultStatistics() Statistics {
	return Statistics{
		WeeklyGoal:   DefaultWeeklyGoal(),
		Achievements: []string{},
	}
}

func (s Statistics) clone() Statistics {
	s.LastActivityAt = cloneTime(s.LastActivityAt)
	s.Achievements = slices.Clone(s.Achievements)
	return s
}

// User is the owner of a store. Exactly one user is current at a time.
type User struct {
	Record
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Avatar      string      `json:"avatar"`
	Preferences Preferences `json:"preferences"`
	Statistics  Statistics  `json:"statistics"`
	LastLoginAt *time.Time  `json:"lastLoginAt"`
	IsActive    bool        `json:"isActive"`
}

// UnmarshalJSON fills options and counters missing from older records with
// their defaults.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	p := plain{
		Preferences: DefaultPreferences(),
		Statistics:  DefaultStatistics(),
		IsActive:    true,
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = User(p)
	return nil
}

// NewUser creates an active user with default preferences.
func NewUser(displayName, username, email string, now time.Time) User {
	return User{
		Record:      NewRecord(now),
		Username:    username,
		Email:       email,
		DisplayName: displayName,
		Preferences: DefaultPreferences(),
		Statistics:  DefaultStatistics(),
		IsActive:    true,
	}
}

// DefaultUser creates the user provisioned for a fresh store.
func DefaultUser(now time.Time) User {
	return NewUser("Default User", "default_user", "", now)
}

func (u User) clone() User {
	u.Statistics = u.Statistics.clone()
	u.LastLoginAt = cloneTime(u.LastLoginAt)
	return u
}

// WithPreferences applies patch and validates the result.
func (u User) WithPreferences(patch PreferencesPatch, now time.Time) (User, error) {
	prefs := u.Preferences.Apply(patch)
	if err := prefs.Validate(); err != nil {
		return u, err
	}
	u = u.clone()
	u.Preferences = prefs
	u.Record = u.stamped(now)
	return u, nil
}

// SetPreference parses a textual key/value pair and applies it.
func (u User) SetPreference(key, value string, now time.Time) (User, error) {
	patch, err := ParsePreference(key, value)
	if err != nil {
		return u, err
	}
	return u.WithPreferences(patch, now)
}

// WithProfile replaces the descriptive profile fields.
func (u User) WithProfile(displayName, username, email string, now time.Time) User {
	u = u.clone()
	u.DisplayName = strings.TrimSpace(displayName)
	u.Username = username
	u.Email = email
	u.Record = u.stamped(now)
	return u
}

// RecordLogin counts a login at now.
func (u User) RecordLogin(now time.Time) User {
	u = u.clone()
	u.LastLoginAt = timePtr(now)
	u.Statistics.LoginCount++
	u.Statistics.LastActivityAt = timePtr(now)
	u.Record = u.stamped(now)
	return u
}

// RecordReading adds minutes of reading to the totals and rollups.
func (u User) RecordReading(minutes int, now time.Time) User {
	u = u.clone()
	u.Statistics.TotalReadingTime += minutes
	u.Statistics.WeeklyStats.ReadingTime += minutes
	u.Statistics.MonthlyStats.ReadingTime += minutes
	u.Statistics.LastActivityAt = timePtr(now)
	u.Record = u.stamped(now)
	return u
}

// RecordDocumentRead counts one finished document.
func (u User) RecordDocumentRead(now time.Time) User {
	u = u.clone()
	u.Statistics.DocumentsRead++
	u.Statistics.WeeklyStats.DocumentsRead++
	u.Statistics.MonthlyStats.DocumentsRead++
	u.Statistics.LastActivityAt = timePtr(now)
	u.Record = u.stamped(now)
	return u
}

// RecordWordsLearned counts n newly learned words.
func (u User) RecordWordsLearned(n int, now time.Time) User {
	u = u.clone()
	u.Statistics.WeeklyStats.WordsLearned += n
	u.Statistics.MonthlyStats.WordsLearned += n
	u.Statistics.LastActivityAt = timePtr(now)
	u.Record = u.stamped(now)
	return u
}

// WithTotals replaces the store-derived totals.
func (u User) WithTotals(documents, words, vocabularySize int, now time.Time) User {
	u = u.clone()
	u.Statistics.TotalDocuments = documents
	u.Statistics.TotalWords = words
	u.Statistics.VocabularySize = vocabularySize
	u.Record = u.stamped(now)
	return u
}

// ResetWeekly zeroes the weekly rollup.
func (u User) ResetWeekly(now time.Time) User {
	u = u.clone()
	u.Statistics.WeeklyStats = PeriodStats{}
	u.Record = u.stamped(now)
	return u
}

// ResetMonthly zeroes the monthly rollup.
func (u User) ResetMonthly(now time.Time) User {
	u = u.clone()
	u.Statistics.MonthlyStats = PeriodStats{}
	u.Record = u.stamped(now)
	return u
}

// AddAchievement records name once.
func (u User) AddAchievement(name string, now time.Time) User {
	list, changed := addUnique(u.Statistics.Achievements, strings.TrimSpace(name))
	if !changed {
		return u
	}
	u = u.clone()
	u.Statistics.Achievements = list
	u.Record = u.stamped(now)
	return u
}

// DisplayInfo is the public subset of a user.
type DisplayInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	IsActive    bool   `json:"isActive"`
}

// DisplayInfo returns the fields shown to other parts of the interface.
func (u User) DisplayInfo() DisplayInfo {
	return DisplayInfo{ID: u.ID, DisplayName: u.DisplayName, Avatar: u.Avatar, IsActive: u.IsActive}
}
