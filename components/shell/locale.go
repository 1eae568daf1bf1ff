package shell

import (
	"strings"

	"golang.org/x/text/language"
)

// LocaleMatcher negotiates the viewer locale from Accept-Language.
type LocaleMatcher struct {
	supported []string
	matcher   language.Matcher
}

// NewLocaleMatcher builds a matcher; the first supported locale is the
// fallback. Invalid tags are skipped.
func NewLocaleMatcher(supported ...string) *LocaleMatcher {
	tags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, name := range supported {
		tag, err := language.Parse(strings.TrimSpace(name))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, tag.String())
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
		names = []string{language.English.String()}
	}
	return &LocaleMatcher{supported: names, matcher: language.NewMatcher(tags)}
}

// Supported lists the configured locales in preference order.
func (m *LocaleMatcher) Supported() []string {
	return append([]string(nil), m.supported...)
}

// Match returns the best supported locale for the header value.
func (m *LocaleMatcher) Match(acceptLanguage string) string {
	if m == nil {
		return "en"
	}
	fallback := m.supported[0]
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := m.matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return m.supported[index]
}
