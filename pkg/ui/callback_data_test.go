package ui

import (
	"strings"
	"testing"
)

func TestBuildAndParseLanguageCallback(t *testing.T) {
	for _, code := range []string{"en", "ja"} {
		data, err := BuildLanguageCallback(code)
		if err != nil {
			t.Fatalf("BuildLanguageCallback(%q) failed: %v", code, err)
		}
		action, err := ParseCallbackData(data)
		if err != nil {
			t.Fatalf("ParseCallbackData(%q) failed: %v", data, err)
		}
		if action.Op != OpSetLanguage || action.Language != code {
			t.Errorf("round trip gave %+v, want lang %q", action, code)
		}
	}
}

func TestBuildLanguageCallbackRejectsUnsupported(t *testing.T) {
	if _, err := BuildLanguageCallback("fr"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestParseCloseCallback(t *testing.T) {
	data, err := BuildCloseCallback()
	if err != nil {
		t.Fatalf("BuildCloseCallback failed: %v", err)
	}
	action, err := ParseCallbackData(data)
	if err != nil {
		t.Fatalf("ParseCallbackData failed: %v", err)
	}
	if action.Op != OpClose {
		t.Errorf("action = %+v, want close", action)
	}
}

func TestParseCallbackDataRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"s:home",
		"p:",
		"p:lang",
		"p:lang:fr",
		"p:lang:en:extra",
		"p:unknownop",
		"p:lang:" + strings.Repeat("x", MaxCallbackDataLen),
	}
	for _, data := range cases {
		if _, err := ParseCallbackData(data); err == nil {
			t.Errorf("ParseCallbackData(%q) succeeded, want error", data)
		}
	}
}
