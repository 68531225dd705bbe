package narrative

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const fallbackNeutralScore = 75

// fallbackWriter produces the deterministic narrative used whenever the
// model is unavailable.
type fallbackWriter struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

func newFallbackWriter(defaultLocale string) (*fallbackWriter, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	paths, err := fs.Glob(localeFS, "locales/active.*.json")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	for _, path := range paths {
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("load locale %s: %w", path, err)
		}
	}
	if strings.TrimSpace(defaultLocale) == "" {
		defaultLocale = language.English.String()
	}
	return &fallbackWriter{bundle: bundle, defaultLocale: defaultLocale}, nil
}

func (f *fallbackWriter) write(in Input) Result {
	loc := i18n.NewLocalizer(f.bundle, in.Locale, f.defaultLocale)
	msg := func(id string, data map[string]string) string {
		text, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
		if err != nil {
			return id
		}
		return text
	}

	traveler := msg("fallback_traveler", nil)
	data := map[string]string{
		"Name": firstNonEmpty(in.Name, traveler),
		"Sign": firstNonEmpty(in.ZodiacSign, traveler),
	}
	return Result{
		Score:       FallbackScore(in.DOB),
		Archetype:   msg("fallback_archetype", nil),
		Caption:     msg("fallback_caption", nil),
		Summary:     msg("fallback_summary", nil),
		Explanation: msg("fallback_explanation", data),
		Strategy:    msg("fallback_strategy", nil),
		Schedule:    []string{msg("fallback_slot_1", nil), msg("fallback_slot_2", nil)},
		Actions:     []string{msg("fallback_action_1", nil), msg("fallback_action_2", nil), msg("fallback_action_3", nil)},
		Source:      SourceFallback,
	}
}

// FallbackScore is the digit-sum score of a YYYY-MM-DD birth date. It always
// lands in 10..98; malformed dates score 75.
func FallbackScore(dob string) int {
	digits := strings.ReplaceAll(strings.TrimSpace(dob), "-", "")
	if digits == "" {
		return fallbackNeutralScore
	}
	sum := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fallbackNeutralScore
		}
		sum += int(r - '0')
	}
	return sum%9*11 + 10
}
