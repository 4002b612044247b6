// Package acquire fetches libretto text from public libretto sites and
// writes it out as plain text plus provenance, the raw material the
// base-libretto files are prepared from.
package acquire

import "strings"

// ElementKind classifies a structural element extracted from a libretto
// page.
type ElementKind string

const (
	KindActHeader   ElementKind = "act_header"
	KindNumberLabel ElementKind = "number_label"
	KindCharacter   ElementKind = "character"
	KindDirection   ElementKind = "direction"
	KindText        ElementKind = "text"
	KindBlankLine   ElementKind = "blank_line"
)

// Element is one structural unit of libretto text: a header, a character
// name, a stage direction, or a line of sung text.
type Element struct {
	Kind ElementKind `json:"type"`
	Text string      `json:"text,omitempty"`
}

// SourceInfo records where and when the text was fetched.
type SourceInfo struct {
	URL       string `json:"url"`
	Site      string `json:"site"`
	FetchedAt string `json:"fetched_at"`
	Opera     string `json:"opera"`
}

// AcquiredText is a single-language extraction from one page.
type AcquiredText struct {
	Source   SourceInfo `json:"source"`
	Language string     `json:"language"`
	Elements []Element  `json:"elements"`
}

// BilingualRow is one row of a side-by-side bilingual table: the same
// passage in two languages.
type BilingualRow struct {
	Index         int       `json:"index"`
	Lang1Elements []Element `json:"lang1_elements"`
	Lang2Elements []Element `json:"lang2_elements"`
}

// BilingualLibretto is a pre-aligned bilingual extraction.
type BilingualLibretto struct {
	Source SourceInfo     `json:"source"`
	Lang1  string         `json:"lang1"`
	Lang2  string         `json:"lang2"`
	Rows   []BilingualRow `json:"rows"`
}

// PlainText renders elements as lines, blank elements as empty lines.
func PlainText(elements []Element) string {
	lines := make([]string, 0, len(elements))
	for _, el := range elements {
		if el.Kind == KindBlankLine {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, el.Text)
	}
	return strings.Join(lines, "\n")
}

// Lang1Text renders the first-language column of every row, rows
// separated by blank lines.
func (b *BilingualLibretto) Lang1Text() string {
	return b.columnText(func(r *BilingualRow) []Element { return r.Lang1Elements })
}

// Lang2Text renders the second-language column of every row.
func (b *BilingualLibretto) Lang2Text() string {
	return b.columnText(func(r *BilingualRow) []Element { return r.Lang2Elements })
}

func (b *BilingualLibretto) columnText(column func(*BilingualRow) []Element) string {
	parts := make([]string, 0, len(b.Rows))
	for i := range b.Rows {
		parts = append(parts, PlainText(column(&b.Rows[i])))
	}
	return strings.Join(parts, "\n\n")
}

// LanguageName maps an ISO 639-1 code to the filename-friendly English
// name used for the output text files.
func LanguageName(code string) string {
	switch code {
	case "it":
		return "italian"
	case "en":
		return "english"
	case "de":
		return "german"
	case "fr":
		return "french"
	case "es":
		return "spanish"
	case "ru":
		return "russian"
	default:
		return code
	}
}
