package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pbaille/tasker/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = cellStyle.Foreground(lipgloss.Color("#bb9af7"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderEntries lays out one row per entry.
func renderEntries(entries []*domain.TaskEntry) string {
	t := newTable("ID", "Created", "Title", "Status", "Tags")
	for _, e := range entries {
		t.Row(e.ID, e.CreatedAt.Local().Format(timeLayout), truncate(e.Title, 50), e.Status.String(), strings.Join(e.TagTitles(), ", "))
	}
	return t.Render()
}

// renderEntry shows every field of one entry as label/value pairs.
func renderEntry(e *domain.TaskEntry) string {
	links := make([]string, len(e.Links))
	for i, l := range e.Links {
		links[i] = l.Link
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return labelStyle
			}
			return cellStyle
		}).
		Row("ID", e.ID).
		Row("Title", e.Title).
		Row("Slug", e.Slug).
		Row("Status", e.Status.String()).
		Row("Created", e.CreatedAt.Local().Format(timeLayout)).
		Row("Updated", e.UpdatedAt.Local().Format(timeLayout)).
		Row("Tags", strings.Join(e.TagTitles(), ", "))
	if e.Notes != "" {
		t.Row("Notes", e.Notes)
	}
	if len(links) > 0 {
		t.Row("Links", strings.Join(links, "\n"))
	}
	return t.Render()
}

func renderTags(tags []*domain.Tag) string {
	t := newTable("ID", "Title", "Default")
	for _, tag := range tags {
		def := ""
		if tag.IsDefault {
			def = "yes"
		}
		t.Row(tag.ID, tag.Title, def)
	}
	return t.Render()
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= max {
		return s
	}
	return fmt.Sprintf("%s...", string([]rune(s)[:max-3]))
}
