package acquire

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parseElements walks a fragment of libretto HTML and extracts its
// structural elements. Bold text becomes an act header or number label,
// italics become stage directions, and line breaks delimit text lines;
// two breaks in a row mark a stanza boundary.
func parseElements(sel *goquery.Selection) []Element {
	p := &elementParser{}
	for _, node := range sel.Nodes {
		p.walk(node)
	}
	p.flush()
	return p.elements
}

type elementParser struct {
	elements      []Element
	pending       strings.Builder
	consecutiveBR int
}

func (p *elementParser) walk(node *html.Node) {
	switch node.Type {
	case html.TextNode:
		if strings.TrimSpace(node.Data) != "" {
			p.consecutiveBR = 0
		}
		p.pending.WriteString(node.Data)
	case html.ElementNode:
		switch node.Data {
		case "br":
			p.flush()
			p.consecutiveBR++
			if p.consecutiveBR >= 2 {
				p.elements = append(p.elements, Element{Kind: KindBlankLine})
				p.consecutiveBR = 0
			}
		case "hr":
			p.flush()
			p.elements = append(p.elements, Element{Kind: KindBlankLine})
			p.consecutiveBR = 0
		case "b", "strong":
			text := strings.TrimSpace(collectText(node))
			if text != "" {
				p.flush()
				kind := KindNumberLabel
				if isActHeader(text) {
					kind = KindActHeader
				}
				p.elements = append(p.elements, Element{Kind: kind, Text: text})
			}
		case "i", "em":
			text := strings.TrimSpace(collectText(node))
			if text != "" {
				p.flush()
				p.elements = append(p.elements, Element{Kind: KindDirection, Text: text})
			}
		case "h1", "h2", "script", "ins", "style":
			// Page chrome and ads, not libretto text.
		default:
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				p.walk(child)
			}
		}
	}
}

// flush classifies any accumulated plain text as a character name or a
// text line and appends it.
func (p *elementParser) flush() {
	text := strings.TrimSpace(p.pending.String())
	p.pending.Reset()
	if text == "" {
		return
	}
	kind := KindText
	if isCharacterName(text) {
		kind = KindCharacter
	}
	p.elements = append(p.elements, Element{Kind: kind, Text: text})
}

// collectText gathers all text under a node, with <br> as newlines.
func collectText(node *html.Node) string {
	var sb strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == html.TextNode:
			sb.WriteString(child.Data)
		case child.Type == html.ElementNode && child.Data == "br":
			sb.WriteByte('\n')
		case child.Type == html.ElementNode:
			sb.WriteString(collectText(child))
		}
	}
	return sb.String()
}

var actHeaderPrefixes = []string{
	"ATTO ", "ACT ", "ACTE ", "AKT ",
	"OVERTURE", "OUVERTURE", "SINFONIA",
	"PERSONAGGI", "CAST",
}

// isActHeader reports whether bold text is an act or section header
// rather than a musical-number label.
func isActHeader(s string) bool {
	upper := strings.ToUpper(s)
	for _, prefix := range actHeaderPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

var sectionPrefixes = []string{
	"ACT ", "ATTO ", "ACTE ", "AKT ",
	"OVERTURE", "SINFONIA", "OUVERTURE",
	"END OF", "FIN ", "SCENA", "SCENE",
}

// connector words that may appear lowercase inside a character heading,
// as in "SUSANNA e FIGARO" or "IL CONTE di Almaviva".
var connectorWords = map[string]bool{
	"e": true, "and": true, "et": true,
	"di": true, "de": true, "la": true, "il": true,
}

// isCharacterName reports whether a line is an all-caps character
// heading, allowing lowercase connector words and a trailing
// parenthesized direction.
func isCharacterName(s string) bool {
	base := s
	if idx := strings.Index(s, "("); idx >= 0 {
		base = strings.TrimSpace(s[:idx])
	}
	if base == "" {
		return false
	}

	upperCount := 0
	for _, r := range base {
		if unicode.IsUpper(r) {
			upperCount++
		}
	}
	if upperCount < 2 {
		return false
	}

	for _, word := range strings.Fields(base) {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, word)
		if clean == "" || connectorWords[clean] {
			continue
		}
		for _, r := range clean {
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}

	upper := strings.ToUpper(base)
	for _, prefix := range sectionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return false
		}
	}
	return true
}
