// Package rules holds the honeypot's declarative rule set: the scam
// vocabulary, the intelligence extraction patterns and the persona phrase
// pools.
//
// A default rule set is embedded in the binary. Operators can replace it with
// a YAML file of the same shape without touching the turn pipeline:
//
//	version: 1
//	scam_keywords: [blocked, verify, ...]
//	extractors:
//	  - category: upi_ids
//	    pattern: '[a-zA-Z0-9.\-_]+@[a-zA-Z]+'
//	persona:
//	  confusion: [...]
//	  actions: [...]
//	  outcomes: [...]
//	  fillers: ["", "uh", ...]
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extraction categories, in the order they are scanned for each message.
const (
	CategoryUPI     = "upi_ids"
	CategoryURL     = "phishing_urls"
	CategoryAccount = "bank_accounts"
)

// Categories lists every extraction category in scan order.
var Categories = []string{CategoryUPI, CategoryURL, CategoryAccount}

//go:embed default.yaml
var defaultYAML []byte

// Set is a parsed and validated rule set.
type Set struct {
	Version      int
	ScamKeywords []string
	// Patterns is keyed by category; every entry of Categories is present.
	Patterns map[string]*regexp.Regexp
	Persona  Persona
}

// Persona holds the phrase pools the reply generator draws from.
type Persona struct {
	Confusion []string `yaml:"confusion"`
	Actions   []string `yaml:"actions"`
	Outcomes  []string `yaml:"outcomes"`
	Fillers   []string `yaml:"fillers"`
}

type fileFormat struct {
	Version      int             `yaml:"version"`
	ScamKeywords []string        `yaml:"scam_keywords"`
	Extractors   []extractorSpec `yaml:"extractors"`
	Persona      Persona         `yaml:"persona"`
}

type extractorSpec struct {
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// Default returns the embedded rule set.
func Default() (*Set, error) {
	set, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded rules: %w", err)
	}
	return set, nil
}

// Load reads the rule set at path, or the embedded default when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes and validates a YAML rule set.
func Parse(data []byte) (*Set, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	if len(f.ScamKeywords) == 0 {
		return nil, fmt.Errorf("scam_keywords must not be empty")
	}
	for i, kw := range f.ScamKeywords {
		if strings.TrimSpace(kw) == "" {
			return nil, fmt.Errorf("scam_keywords[%d] is blank", i)
		}
	}

	patterns := make(map[string]*regexp.Regexp, len(Categories))
	for _, ex := range f.Extractors {
		if !knownCategory(ex.Category) {
			return nil, fmt.Errorf("unknown extractor category %q", ex.Category)
		}
		if _, dup := patterns[ex.Category]; dup {
			return nil, fmt.Errorf("duplicate extractor category %q", ex.Category)
		}
		re, err := regexp.Compile(ex.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", ex.Category, err)
		}
		patterns[ex.Category] = re
	}
	for _, c := range Categories {
		if _, ok := patterns[c]; !ok {
			return nil, fmt.Errorf("missing extractor for category %q", c)
		}
	}

	if err := f.Persona.validate(); err != nil {
		return nil, err
	}

	return &Set{
		Version:      f.Version,
		ScamKeywords: f.ScamKeywords,
		Patterns:     patterns,
		Persona:      f.Persona,
	}, nil
}

func (p Persona) validate() error {
	pools := []struct {
		name    string
		phrases []string
	}{
		{"confusion", p.Confusion},
		{"actions", p.Actions},
		{"outcomes", p.Outcomes},
		{"fillers", p.Fillers},
	}
	for _, pool := range pools {
		if len(pool.phrases) == 0 {
			return fmt.Errorf("persona.%s must not be empty", pool.name)
		}
	}
	return nil
}

func knownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
