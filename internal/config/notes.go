package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ifautofab/play-deploy/internal/model"
)

// MaxReleaseNoteLength is the per-language limit Google Play enforces on
// "What's new" text.
const MaxReleaseNoteLength = 500

// LoadReleaseNotes reads a YAML mapping of language tag to note text:
//
//	en-US: |
//	  Bug fixes and performance improvements.
//	de-DE: Fehlerbehebungen.
//
// The result is sorted by language so the request body is stable.
func LoadReleaseNotes(path string) ([]model.LocalizedText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("release notes file not found: %s", path),
				err,
			)
		}
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to read release notes %s", path), err)
	}

	notes, err := ParseReleaseNotes(data)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid release notes %s", path), err)
	}
	return notes, nil
}

// ParseReleaseNotes decodes and validates release notes YAML.
func ParseReleaseNotes(data []byte) ([]model.LocalizedText, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no release notes defined")
	}

	languages := make([]string, 0, len(raw))
	for lang := range raw {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	notes := make([]model.LocalizedText, 0, len(languages))
	for _, lang := range languages {
		text := strings.TrimSpace(raw[lang])
		if strings.TrimSpace(lang) == "" {
			return nil, fmt.Errorf("release note with empty language tag")
		}
		if text == "" {
			return nil, fmt.Errorf("release note for %s is empty", lang)
		}
		// Google Play counts characters, not bytes.
		if n := utf8.RuneCountInString(text); n > MaxReleaseNoteLength {
			return nil, fmt.Errorf("release note for %s is %d characters (max %d)", lang, n, MaxReleaseNoteLength)
		}
		notes = append(notes, model.LocalizedText{Language: lang, Text: text})
	}
	return notes, nil
}
