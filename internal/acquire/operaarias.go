package acquire

import (
	"bytes"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const operaAriasBaseURL = "https://www.opera-arias.com"

// OperaAriasSource acquires single-language libretto text from
// opera-arias.com. The Italian libretto and its English translation live
// on separate pages under the same opera slug.
type OperaAriasSource struct {
	fetch fetchFunc
}

func NewOperaAriasSource() *OperaAriasSource {
	return &OperaAriasSource{fetch: fetchHTML}
}

// Acquire fetches one language for the opera at the given slug
// (e.g. "mozart/le-nozze-di-figaro"). Supported languages are "it" and
// "en".
func (s *OperaAriasSource) Acquire(operaSlug, lang string) (*AcquiredText, error) {
	var url, divClass string
	switch lang {
	case "it":
		url = fmt.Sprintf("%s/%s/libretto/", operaAriasBaseURL, operaSlug)
		divClass = "libretto_div"
	case "en":
		url = fmt.Sprintf("%s/%s/libretto/english/", operaAriasBaseURL, operaSlug)
		divClass = "translation_div"
	default:
		return nil, fmt.Errorf("unsupported language for opera-arias.com: %s", lang)
	}

	body, err := s.fetch(url)
	if err != nil {
		return nil, err
	}

	elements, err := parseOperaAriasPage(body, divClass)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return &AcquiredText{
		Source: SourceInfo{
			URL:       url,
			Site:      "opera-arias.com",
			FetchedAt: time.Now().UTC().Format(time.RFC3339),
			Opera:     operaSlug,
		},
		Language: lang,
		Elements: elements,
	}, nil
}

func parseOperaAriasPage(body []byte, divClass string) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	content := doc.Find("div." + divClass)
	if content.Length() == 0 {
		return nil, fmt.Errorf("could not find div.%s", divClass)
	}

	return parseElements(content.First()), nil
}
