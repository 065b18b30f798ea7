// Package i18n resolves display labels for stored codes (document types, actions,
// report types) and report column headers. Supported languages: Ukrainian (uk), English (en).
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"archivesys/internal/model"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	supported = []language.Tag{language.Ukrainian, language.English}
	matcher   = language.NewMatcher(supported)
)

type ctxKey struct{}

// Bundle holds the translation catalogs: lang -> key -> text.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	fallback string
}

// NewBundle loads the embedded catalogs. fallback is used for unknown languages and
// missing keys; it must be one of the supported languages.
func NewBundle(fallback string) (*Bundle, error) {
	b := &Bundle{catalogs: make(map[string]map[string]string), fallback: fallback}
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}
	for _, e := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if err := b.Load(strings.TrimSuffix(e.Name(), ".json"), data); err != nil {
			return nil, err
		}
	}
	if _, ok := b.catalogs[fallback]; !ok {
		return nil, fmt.Errorf("i18n: unsupported fallback language %q", fallback)
	}
	return b, nil
}

// Load parses a flat JSON catalog for lang, replacing any previous one.
func (b *Bundle) Load(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: parse catalog %s: %w", lang, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogs[lang] = messages
	return nil
}

// Fallback returns the default language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns the translation of key in lang, then in the fallback language, then key itself.
func (b *Bundle) T(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[b.fallback][key]; ok {
		return msg
	}
	return key
}

// Tf formats the translation of key with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Match picks the best supported language for an Accept-Language header value.
func (b *Bundle) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return b.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// DocumentType returns the display label of a document type code.
func (b *Bundle) DocumentType(lang string, t model.DocumentType) string {
	return b.T(lang, "document_type."+string(t))
}

// Action returns the display label of a history action.
func (b *Bundle) Action(lang string, a model.HistoryAction) string {
	return b.T(lang, "action."+string(a))
}

// ReportType returns the display label of a report type.
func (b *Bundle) ReportType(lang string, t model.ReportType) string {
	return b.T(lang, "report_type."+string(t))
}

// Format returns the display label of a report format.
func (b *Bundle) Format(lang string, f model.ReportFormat) string {
	return b.T(lang, "format."+string(f))
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the request language, or def when none was stored.
func LangFromContext(ctx context.Context, def string) string {
	if ctx != nil {
		if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
			return v
		}
	}
	return def
}
