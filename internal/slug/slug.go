// Package slug derives the short per-day identifier used to detect
// duplicate task entries.
package slug

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"

	gslug "github.com/gosimple/slug"
)

const (
	maxWords   = 3
	wordLength = 4
	hashLength = 6
)

var stripper = strings.NewReplacer(",", "", ".", "", ";", "")

// Normalize trims the title, drops commas, periods and semicolons and
// lowercases it.
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(stripper.Replace(title)))
}

// Slugify returns the slug of title for the current local day.
func Slugify(title string) string {
	return Make(title, time.Now())
}

// Make returns the slug of title for the calendar day of day. Two titles
// that normalize the same produce the same slug on the same day and
// different slugs on different days. A title without a single letter or
// digit has no slug.
func Make(title string, day time.Time) string {
	normalized := Normalize(title)
	tokens := words(normalized)
	if len(tokens) == 0 {
		return ""
	}

	tokens = append(tokens, hash(normalized, day))
	return strings.Join(tokens, "-")
}

// words transliterates normalized to ASCII and keeps the first letters of
// its first words.
func words(normalized string) []string {
	var tokens []string
	for _, word := range strings.Split(gslug.Make(normalized), "-") {
		if word == "" {
			continue
		}
		if len(word) > wordLength {
			word = word[:wordLength]
		}
		tokens = append(tokens, word)
		if len(tokens) == maxWords {
			break
		}
	}
	return tokens
}

func hash(normalized string, day time.Time) string {
	sum := sha256.Sum256([]byte(normalized + ":" + day.Format(time.DateOnly)))
	encoded := base64.StdEncoding.EncodeToString(sum[:])

	var sb strings.Builder
	for _, r := range encoded {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			sb.WriteRune(r)
			if sb.Len() == hashLength {
				break
			}
		}
	}
	return sb.String()
}
