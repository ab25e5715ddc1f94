package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if len(set.ScamKeywords) != 11 {
		t.Errorf("expected 11 scam keywords, got %d", len(set.ScamKeywords))
	}
	for _, c := range Categories {
		if set.Patterns[c] == nil {
			t.Errorf("missing pattern for %s", c)
		}
	}
	if len(set.Persona.Fillers) == 0 || set.Persona.Fillers[0] != "" {
		t.Errorf("expected first filler to be the empty string, got %q", set.Persona.Fillers)
	}
}

const validRules = `
version: 2
scam_keywords: [refund]
extractors:
  - category: upi_ids
    pattern: '\w+@\w+'
  - category: phishing_urls
    pattern: 'https?://\S+'
  - category: bank_accounts
    pattern: '\d{9}'
persona:
  confusion: [huh]
  actions: [I tried]
  outcomes: [it broke]
  fillers: [""]
`

func TestParse_Valid(t *testing.T) {
	set, err := Parse([]byte(validRules))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if set.Version != 2 {
		t.Errorf("expected version 2, got %d", set.Version)
	}
	if got := set.Patterns[CategoryAccount].String(); got != `\d{9}` {
		t.Errorf("unexpected account pattern %q", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "empty vocabulary",
			mutate:  func(s string) string { return strings.Replace(s, "[refund]", "[]", 1) },
			wantErr: "scam_keywords must not be empty",
		},
		{
			name:    "blank keyword",
			mutate:  func(s string) string { return strings.Replace(s, "[refund]", `[refund, "  "]`, 1) },
			wantErr: "scam_keywords[1] is blank",
		},
		{
			name:    "unknown category",
			mutate:  func(s string) string { return strings.Replace(s, "category: upi_ids", "category: emails", 1) },
			wantErr: `unknown extractor category "emails"`,
		},
		{
			name:    "duplicate category",
			mutate:  func(s string) string { return strings.Replace(s, "category: upi_ids", "category: bank_accounts", 1) },
			wantErr: `duplicate extractor category "bank_accounts"`,
		},
		{
			name:    "bad regex",
			mutate:  func(s string) string { return strings.Replace(s, `'\d{9}'`, `'(\d'`, 1) },
			wantErr: "compile bank_accounts pattern",
		},
		{
			name:    "empty persona pool",
			mutate:  func(s string) string { return strings.Replace(s, "outcomes: [it broke]", "outcomes: []", 1) },
			wantErr: "persona.outcomes must not be empty",
		},
		{
			name:    "malformed yaml",
			mutate:  func(string) string { return "scam_keywords: [refund" },
			wantErr: "parse rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.mutate(validRules)))
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_MissingCategory(t *testing.T) {
	trimmed := strings.Replace(validRules, "  - category: bank_accounts\n    pattern: '\\d{9}'\n", "", 1)
	_, err := Parse([]byte(trimmed))
	if err == nil || !strings.Contains(err.Error(), `missing extractor for category "bank_accounts"`) {
		t.Fatalf("expected missing category error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses embedded rules", func(t *testing.T) {
		set, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if set.ScamKeywords[0] != "blocked" {
			t.Errorf("expected embedded vocabulary, got %v", set.ScamKeywords)
		}
	})

	t.Run("file override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		if err := os.WriteFile(path, []byte(validRules), 0o600); err != nil {
			t.Fatal(err)
		}
		set, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(set.ScamKeywords) != 1 || set.ScamKeywords[0] != "refund" {
			t.Errorf("unexpected vocabulary %v", set.ScamKeywords)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
