package acquire

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const murashevBaseURL = "https://www.murashev.com/opera"

// MurashevSource acquires pre-aligned bilingual libretto text from
// murashev.com, which renders the original and the translation side by
// side in a two-column table.
type MurashevSource struct {
	fetch fetchFunc
}

func NewMurashevSource() *MurashevSource {
	return &MurashevSource{fetch: fetchHTML}
}

// Acquire fetches the bilingual page for the opera at the given slug
// (e.g. "Le_nozze_di_Figaro_libretto_English_Italian").
func (s *MurashevSource) Acquire(operaSlug, lang1, lang2 string) (*BilingualLibretto, error) {
	url := fmt.Sprintf("%s/%s", murashevBaseURL, operaSlug)

	body, err := s.fetch(url)
	if err != nil {
		return nil, err
	}

	rows, err := parseMurashevPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return &BilingualLibretto{
		Source: SourceInfo{
			URL:       url,
			Site:      "murashev.com",
			FetchedAt: time.Now().UTC().Format(time.RFC3339),
			Opera:     operaSlug,
		},
		Lang1: lang1,
		Lang2: lang2,
		Rows:  rows,
	}, nil
}

// parseMurashevPage extracts aligned rows from the first table whose
// rows carry exactly two text cells.
func parseMurashevPage(body []byte) ([]BilingualRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var rows []BilingualRow
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != 2 {
			return
		}

		lang1 := parseElements(cells.Eq(0))
		lang2 := parseElements(cells.Eq(1))
		if len(lang1) == 0 && len(lang2) == 0 {
			return
		}

		rows = append(rows, BilingualRow{
			Index:         len(rows),
			Lang1Elements: lang1,
			Lang2Elements: lang2,
		})
	})

	if len(rows) == 0 {
		return nil, fmt.Errorf("no bilingual table rows found")
	}
	return rows, nil
}
