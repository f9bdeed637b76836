package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Translations map[string]string

var (
	locales = map[string]Translations{"en": builtinEnglish()}
	mu      sync.RWMutex
)

// LoadTranslations reads <localePath>/<locale>/notifications.yaml for every
// locale directory. Keys found on disk override the built-in English text.
func LoadTranslations(localePath string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := os.ReadDir(localePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := filepath.Join(localePath, locale, "notifications.yaml")

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		var config struct {
			Notifications Translations `yaml:"NOTIFICATIONS"`
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		merged := Translations{}
		for k, v := range locales[locale] {
			merged[k] = v
		}
		for k, v := range config.Notifications {
			merged[k] = v
		}
		locales[locale] = merged
	}

	return nil
}

func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != "en" {
		if trans, ok := locales["en"]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

// Render translates key and substitutes {name} placeholders from vars.
func Render(locale, key string, vars map[string]string) string {
	text := Translate(locale, key)
	if len(vars) == 0 {
		return text
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(vars)*2)
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", vars[name])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func builtinEnglish() Translations {
	return Translations{
		"card_renewal_due.title":        "Your PWD ID is due for renewal",
		"card_renewal_due.message":      "Your PWD ID expires on {expiration_date} ({days_remaining} days remaining). Please submit your renewal requirements.",
		"card_ready_to_claim.title":     "Your PWD ID is ready to claim",
		"card_ready_to_claim.message":   "Your PWD ID {generated_id} is ready. Please claim it at the office.",
		"card_renewal_approved.title":   "Renewal approved",
		"card_renewal_approved.message": "Your ID renewal request was approved. Your new card is valid until {expiration_date}.",
		"card_renewal_rejected.title":   "Renewal rejected",
		"card_renewal_rejected.message": "Your ID renewal request was rejected: {notes}",
	}
}
