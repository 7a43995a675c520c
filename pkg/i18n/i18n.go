// Package i18n resolves message keys to user-facing strings per request.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	LangEN = "en"
	LangAR = "ar"
)

type Manager struct {
	defaultLanguage string
	locales         map[string]map[string]string
	tags            []language.Tag
	matcher         language.Matcher
}

// NewManager loads the embedded locale files. The default language
// must be one of them.
func NewManager(defaultLanguage string) (*Manager, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	manager := &Manager{locales: map[string]map[string]string{}}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		lang := strings.TrimSuffix(strings.ToLower(entry.Name()), ".json")
		content, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		manager.locales[lang] = messages
	}

	defaultLanguage = strings.ToLower(strings.TrimSpace(defaultLanguage))
	if _, ok := manager.locales[defaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q missing", defaultLanguage)
	}
	manager.defaultLanguage = defaultLanguage

	// The matcher falls back to the first tag, so the default goes first
	langs := make([]string, 0, len(manager.locales))
	for lang := range manager.locales {
		if lang != defaultLanguage {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	manager.tags = append(manager.tags, language.Make(defaultLanguage))
	for _, lang := range langs {
		manager.tags = append(manager.tags, language.Make(lang))
	}
	manager.matcher = language.NewMatcher(manager.tags)

	return manager, nil
}

func (m *Manager) DefaultLanguage() string {
	return m.defaultLanguage
}

// Negotiate picks the best supported language for the given preferences
// (a ?lang= value and/or an Accept-Language header).
func (m *Manager) Negotiate(preferred ...string) string {
	var wanted []language.Tag
	for _, p := range preferred {
		if strings.TrimSpace(p) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}
	if len(wanted) == 0 {
		return m.defaultLanguage
	}

	_, index, confidence := m.matcher.Match(wanted...)
	if confidence == language.No {
		return m.defaultLanguage
	}
	base, _ := m.tags[index].Base()
	return base.String()
}

func (m *Manager) Localizer(lang string) *Localizer {
	messages, ok := m.locales[lang]
	if !ok {
		lang = m.defaultLanguage
		messages = m.locales[lang]
	}
	return &Localizer{
		lang:     lang,
		messages: messages,
		fallback: m.locales[m.defaultLanguage],
	}
}

// Localizer translates keys for one language.
type Localizer struct {
	lang     string
	messages map[string]string
	fallback map[string]string
}

func (l *Localizer) Language() string {
	if l == nil {
		return ""
	}
	return l.lang
}

// T returns the message for key, falling back to the default language
// and finally to the key itself. "{param}" is replaced by param when given.
func (l *Localizer) T(key string, param ...string) string {
	msg := key
	if l != nil {
		if v, ok := l.messages[key]; ok {
			msg = v
		} else if v, ok := l.fallback[key]; ok {
			msg = v
		}
	}
	if len(param) > 0 {
		msg = strings.ReplaceAll(msg, "{param}", param[0])
	}
	return msg
}

type ctxKey struct{}

func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request localizer. A nil localizer is safe to
// use and returns keys untranslated.
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(ctxKey{}).(*Localizer)
	return l
}
