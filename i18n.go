package main

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Messages is the user-facing text for one locale.
type Messages struct {
	Lang            string `yaml:"lang"`
	Title           string `yaml:"title"`
	LoadError       string `yaml:"load_error"`
	NoResults       string `yaml:"no_results"`
	NotFound        string `yaml:"not_found"`
	Filters         string `yaml:"filters"`
	Apply           string `yaml:"apply"`
	SortBy          string `yaml:"sort_by"`
	SortPlaceholder string `yaml:"sort_placeholder"`
	SortDirection   string `yaml:"sort_direction"`
	ViewProfile     string `yaml:"view_profile"`
	Back            string `yaml:"back"`
	AdditionalInfo  string `yaml:"additional_info"`
	Yes             string `yaml:"yes"`
	No              string `yaml:"no"`
}

// YesNo renders a boolean in the locale.
func (m Messages) YesNo(b bool) string {
	if b {
		return m.Yes
	}
	return m.No
}

func loadMessages(locale string) (Messages, error) {
	var msgs Messages
	data, err := localeFiles.ReadFile("locales/" + locale + ".yaml")
	if err != nil {
		return msgs, fmt.Errorf("unsupported locale %q: %w", locale, err)
	}
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		return msgs, fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}
	return msgs, nil
}
