package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var tagStripper = strings.NewReplacer(",", "", ".", "", ";", "", "|", "")

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// TaskTitle lowercases, trims and title-cases a task title.
func TaskTitle(title string) string {
	return titleCase(strings.ToLower(strings.TrimSpace(title)))
}

// TagTitle is the canonical form of a tag title: punctuation stripped,
// trimmed and title-cased.
func TagTitle(title string) string {
	return titleCase(strings.TrimSpace(tagStripper.Replace(strings.ToLower(title))))
}
