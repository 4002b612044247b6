// Package normalize prepares libretto text for fuzzy comparison and for
// storage. Anchor matching must survive the usual differences between album
// metadata and printed librettos: case, accents, typographic quotes and
// uneven whitespace.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes, so
// "perchè" and "perche" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var punctReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"…", "...",
	",", "",
	";", "",
	":", "",
	"!", "",
	"?", "",
)

// ForMatch normalizes text for anchor matching: case folding, diacritic
// stripping, punctuation removal and whitespace collapsing.
func ForMatch(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = punctReplacer.Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Text normalizes acquired text to NFC and trims trailing whitespace per
// line, keeping accented characters in a consistent precomposed form.
func Text(s string) string {
	nfc := norm.NFC.String(s)
	lines := strings.Split(nfc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}

// CollapseBlankLines reduces runs of blank lines to a single blank line.
func CollapseBlankLines(s string) string {
	var kept []string
	prevBlank := false
	for _, line := range strings.Split(s, "\n") {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		kept = append(kept, line)
		prevBlank = blank
	}
	return strings.Join(kept, "\n")
}

// quotePairs maps opening quote runes to their closing counterparts.
var quotePairs = map[rune]rune{
	'"':      '"',
	'“': '”',
}

// ExtractAnchors returns every quoted fragment in a track title, in order.
// Straight and typographic quotes both delimit anchors; a typographic
// opening quote also accepts a straight closing quote.
func ExtractAnchors(title string) []string {
	var anchors []string
	runes := []rune(title)
	for i := 0; i < len(runes); i++ {
		closing, ok := quotePairs[runes[i]]
		if !ok {
			continue
		}
		var quoted []rune
		j := i + 1
		for ; j < len(runes); j++ {
			if runes[j] == closing || runes[j] == '"' {
				break
			}
			quoted = append(quoted, runes[j])
		}
		if trimmed := strings.TrimSpace(string(quoted)); trimmed != "" {
			anchors = append(anchors, trimmed)
		}
		i = j
	}
	return anchors
}

// ExtractAnchor returns the first quoted fragment in a track title, which
// by convention names the text the track opens with.
func ExtractAnchor(title string) (string, bool) {
	anchors := ExtractAnchors(title)
	if len(anchors) == 0 {
		return "", false
	}
	return anchors[0], true
}
