package dictionary

import (
	"context"
	"errors"
	"testing"
)

func TestResolveLocalizedValueFallbacks(t *testing.T) {
	values := map[string]string{"default": "Hello", "zh": "你好", "es-MX": "Hola"}
	cases := map[string]string{
		"zh-CN": "你好",
		"ZH":    "你好",
		"es_mx": "Hola",
		"fr":    "Hello",
		"":      "Hello",
	}
	for locale, want := range cases {
		if got := ResolveLocalizedValue(values, locale, "x"); got != want {
			t.Fatalf("locale %q: expected %q, got %q", locale, want, got)
		}
	}
	if got := ResolveLocalizedValue(nil, "en", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestMessageInterpolates(t *testing.T) {
	if got := Message("en", "form.required", map[string]string{"field": "label"}); got != "Please enter label" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message("en", "unknown.key", nil); got != "unknown.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestMessagesUsesTemplateKeys(t *testing.T) {
	messages := Messages("zh-CN")
	if messages["page_title"] != "数据字典管理" {
		t.Fatalf("unexpected page title %q", messages["page_title"])
	}
	if _, ok := messages["page.title"]; ok {
		t.Fatalf("expected dotted keys to be rewritten")
	}
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, string, map[string]any) (string, error) {
	return "", errors.New("missing")
}

func TestTranslateOrFallback(t *testing.T) {
	ctx := context.Background()
	if got := translateOrFallback(ctx, failingTranslator{}, "en", "page.save", nil); got != "Save" {
		t.Fatalf("expected catalog fallback, got %q", got)
	}
	if got := translateOrFallback(ctx, stubTranslator{}, "zh", "notice.deleted.title", nil); got != "Gone (zh)" {
		t.Fatalf("expected translator value, got %q", got)
	}
}
