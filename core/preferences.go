package core

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// Preferences lists every recognized user option.
type Preferences struct {
	Theme                     string `json:"theme"`
	Language                  string `json:"language"`
	FontSize                  int    `json:"fontSize"`
	FontFamily                string `json:"fontFamily"`
	AutoSave                  bool   `json:"autoSave"`
	AutoBackup                bool   `json:"autoBackup"`
	ReadingMode               string `json:"readingMode"`
	HighlightColor            string `json:"highlightColor"`
	DefaultVocabularyLanguage string `json:"defaultVocabularyLanguage"`
	ShowWordTranslation       bool   `json:"showWordTranslation"`
	ShowWordPronunciation     bool   `json:"showWordPronunciation"`
	EnableKeyboardShortcuts   bool   `json:"enableKeyboardShortcuts"`
	EnableSoundEffects        bool   `json:"enableSoundEffects"`
	LibraryView               string `json:"libraryView"`
	ItemsPerPage              int    `json:"itemsPerPage"`
	SortBy                    string `json:"sortBy"`
	SortOrder                 string `json:"sortOrder"`
}

var (
	themes       = []string{"light", "dark", "auto"}
	readingModes = []string{"normal", "focus", "immersive"}
	libraryViews = []string{"grid", "list"}
	sortFields   = []string{"createdAt", "updatedAt", "title", "size"}
	sortOrders   = []string{"asc", "desc"}

	colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// DefaultPreferences returns the options a new user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:                     "light",
		Language:                  "zh-CN",
		FontSize:                  16,
		FontFamily:                "system",
		AutoSave:                  true,
		AutoBackup:                true,
		ReadingMode:               "normal",
		HighlightColor:            "#ffeb3b",
		DefaultVocabularyLanguage: "English",
		ShowWordTranslation:       true,
		ShowWordPronunciation:     true,
		EnableKeyboardShortcuts:   true,
		EnableSoundEffects:        true,
		LibraryView:               "grid",
		ItemsPerPage:              20,
		SortBy:                    "updatedAt",
		SortOrder:                 "desc",
	}
}

// Validate checks every option against its allowed values.
func (p Preferences) Validate() error {
	switch {
	case !slices.Contains(themes, p.Theme):
		return fmt.Errorf("%w: theme %q", ErrInvalidPreferences, p.Theme)
	case p.Language == "":
		return fmt.Errorf("%w: language is empty", ErrInvalidPreferences)
	case p.FontSize < 8 || p.FontSize > 72:
		return fmt.Errorf("%w: fontSize %d", ErrInvalidPreferences, p.FontSize)
	case p.FontFamily == "":
		return fmt.Errorf("%w: fontFamily is empty", ErrInvalidPreferences)
	case !slices.Contains(readingModes, p.ReadingMode):
		return fmt.Errorf("%w: readingMode %q", ErrInvalidPreferences, p.ReadingMode)
	case !colorPattern.MatchString(p.HighlightColor):
		return fmt.Errorf("%w: highlightColor %q", ErrInvalidPreferences, p.HighlightColor)
	case p.DefaultVocabularyLanguage == "":
		return fmt.Errorf("%w: defaultVocabularyLanguage is empty", ErrInvalidPreferences)
	case !slices.Contains(libraryViews, p.LibraryView):
		return fmt.Errorf("%w: libraryView %q", ErrInvalidPreferences, p.LibraryView)
	case p.ItemsPerPage < 1 || p.ItemsPerPage > 200:
		return fmt.Errorf("%w: itemsPerPage %d", ErrInvalidPreferences, p.ItemsPerPage)
	case !slices.Contains(sortFields, p.SortBy):
		return fmt.Errorf("%w: sortBy %q", ErrInvalidPreferences, p.SortBy)
	case !slices.Contains(sortOrders, p.SortOrder):
		return fmt.Errorf("%w: sortOrder %q", ErrInvalidPreferences, p.SortOrder)
	}
	return nil
}

// PreferencesPatch is a partial update. Nil fields are left unchanged.
type PreferencesPatch struct {
	Theme                     *string
	Language                  *string
	FontSize                  *int
	FontFamily                *string
	AutoSave                  *bool
	AutoBackup                *bool
	ReadingMode               *string
	HighlightColor            *string
	DefaultVocabularyLanguage *string
	ShowWordTranslation       *bool
	ShowWordPronunciation     *bool
	EnableKeyboardShortcuts   *bool
	EnableSoundEffects        *bool
	LibraryView               *string
	ItemsPerPage              *int
	SortBy                    *string
	SortOrder                 *string
}

// Apply returns p with every non-nil field of patch applied.
func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	setString(&p.Theme, patch.Theme)
	setString(&p.Language, patch.Language)
	setInt(&p.FontSize, patch.FontSize)
	setString(&p.FontFamily, patch.FontFamily)
	setBool(&p.AutoSave, patch.AutoSave)
	setBool(&p.AutoBackup, patch.AutoBackup)
	setString(&p.ReadingMode, patch.ReadingMode)
	setString(&p.HighlightColor, patch.HighlightColor)
	setString(&p.DefaultVocabularyLanguage, patch.DefaultVocabularyLanguage)
	setBool(&p.ShowWordTranslation, patch.ShowWordTranslation)
	setBool(&p.ShowWordPronunciation, patch.ShowWordPronunciation)
	setBool(&p.EnableKeyboardShortcuts, patch.EnableKeyboardShortcuts)
	setBool(&p.EnableSoundEffects, patch.EnableSoundEffects)
	setString(&p.LibraryView, patch.LibraryView)
	setInt(&p.ItemsPerPage, patch.ItemsPerPage)
	setString(&p.SortBy, patch.SortBy)
	setString(&p.SortOrder, patch.SortOrder)
	return p
}

// ParsePreference converts a key/value pair given as text into a patch.
// Unknown keys return ErrUnknownPreference.
func ParsePreference(key, value string) (PreferencesPatch, error) {
	var patch PreferencesPatch
	var err error
	switch key {
	case "theme":
		patch.Theme = &value
	case "language":
		patch.Language = &value
	case "fontSize":
		patch.FontSize, err = parseInt(value)
	case "fontFamily":
		patch.FontFamily = &value
	case "autoSave":
		patch.AutoSave, err = parseBool(value)
	case "autoBackup":
		patch.AutoBackup, err = parseBool(value)
	case "readingMode":
		patch.ReadingMode = &value
	case "highlightColor":
		patch.HighlightColor = &value
	case "defaultVocabularyLanguage":
		patch.DefaultVocabularyLanguage = &value
	case "showWordTranslation":
		patch.ShowWordTranslation, err = parseBool(value)
	case "showWordPronunciation":
		patch.ShowWordPronunciation, err = parseBool(value)
	case "enableKeyboardShortcuts":
		patch.EnableKeyboardShortcuts, err = parseBool(value)
	case "enableSoundEffects":
		patch.EnableSoundEffects, err = parseBool(value)
	case "libraryView":
		patch.LibraryView = &value
	case "itemsPerPage":
		patch.ItemsPerPage, err = parseInt(value)
	case "sortBy":
		patch.SortBy = &value
	case "sortOrder":
		patch.SortOrder = &value
	default:
		return patch, fmt.Errorf("%w: %q", ErrUnknownPreference, key)
	}
	if err != nil {
		return patch, fmt.Errorf("%w: %s: %w", ErrInvalidPreferences, key, err)
	}
	return patch, nil
}

func parseInt(s string) (*int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseBool(s string) (*bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
