package slug

import (
	"strings"
	"testing"
	"time"
)

func TestMakeSameDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
	later := time.Date(2024, 1, 1, 23, 59, 59, 0, time.Local)

	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "Respond to Emails", "Respond to Emails"},
		{"case", "respond TO emails", "Respond to Emails"},
		{"punctuation", "Respond to Emails.", "Respond, to Emails;"},
		{"surrounding whitespace", "  Respond to Emails\t", "Respond to Emails"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Make(tt.a, day)
			b := Make(tt.b, later)
			if a != b {
				t.Errorf("Make(%q) = %q, Make(%q) = %q, want equal", tt.a, a, tt.b, b)
			}
		})
	}
}

func TestMakeDifferentDay(t *testing.T) {
	title := "Respond to Emails"
	seen := make(map[string]time.Time)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	for i := 0; i < 30; i++ {
		day := start.AddDate(0, 0, i)
		s := Make(title, day)
		if prev, ok := seen[s]; ok {
			t.Fatalf("slug %q repeated on %s and %s", s, prev.Format(time.DateOnly), day.Format(time.DateOnly))
		}
		seen[s] = day
	}
}

func TestMakeShape(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	got := Make("Respond to all the Emails", day)
	parts := strings.Split(got, "-")
	if len(parts) != 4 {
		t.Fatalf("Make() = %q, want 3 word tokens and a hash", got)
	}
	if parts[0] != "resp" || parts[1] != "to" || parts[2] != "all" {
		t.Errorf("word tokens = %v, want [resp to all]", parts[:3])
	}
	if len(parts[3]) != hashLength {
		t.Errorf("hash %q has length %d, want %d", parts[3], len(parts[3]), hashLength)
	}
	for _, r := range parts[3] {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			t.Errorf("hash %q contains non-letter %q", parts[3], r)
		}
	}
}

func TestMakeEmpty(t *testing.T) {
	for _, title := range []string{"", "   ", ".,;", "...", ";;", "!? --"} {
		if got := Make(title, time.Now()); got != "" {
			t.Errorf("Make(%q) = %q, want empty", title, got)
		}
	}
}

func TestSlugifyUsesToday(t *testing.T) {
	if got, want := Slugify("Pickup Mail"), Make("Pickup Mail", time.Now()); got != want {
		t.Errorf("Slugify() = %q, want %q", got, want)
	}
}

func TestMakeTransliterates(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	tests := []struct {
		title string
		want  []string
	}{
		{"Café résumé", []string{"cafe", "resu"}},
		{"Q3 report: first draft", []string{"q3", "repo", "firs"}},
		{"Über   Straße", []string{"uber", "stra"}},
	}

	for _, tt := range tests {
		got := strings.Split(Make(tt.title, day), "-")
		if len(got) != len(tt.want)+1 {
			t.Errorf("Make(%q) = %q, want %d word tokens and a hash", tt.title, got, len(tt.want))
			continue
		}
		for i, w := range tt.want {
			if got[i] != w {
				t.Errorf("Make(%q) token %d = %q, want %q", tt.title, i, got[i], w)
			}
		}
	}
}
