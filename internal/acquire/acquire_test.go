package acquire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librettist/internal/storage"
)

const librettoPageHTML = `
<html><body>
<div class="libretto_div">
    <h1>Test Opera Libretto</h1>
    <p>
    <b>Personaggi:</b><br>
    FIGARO, cameriere del conte (Basso)<br>
    <br>
    CORO</p>
    <hr>
    <p>
    <b>ATTO PRIMO</b><br>
    <br>
    <i>Camera non affatto ammobiliata</i><br>
    <br>
    <b>No. 1 - Duettino</b><br>
    <br>
    FIGARO<br>
    <i>misurando</i><br>
    Cinque... dieci... venti...<br>
    </p>
</div>
</body></html>`

func TestParseOperaAriasPage(t *testing.T) {
	elements, err := parseOperaAriasPage([]byte(librettoPageHTML), "libretto_div")
	require.NoError(t, err)

	assert.Contains(t, elements, Element{Kind: KindActHeader, Text: "Personaggi:"})
	assert.Contains(t, elements, Element{Kind: KindActHeader, Text: "ATTO PRIMO"})
	assert.Contains(t, elements, Element{Kind: KindDirection, Text: "Camera non affatto ammobiliata"})
	assert.Contains(t, elements, Element{Kind: KindNumberLabel, Text: "No. 1 - Duettino"})
	assert.Contains(t, elements, Element{Kind: KindCharacter, Text: "FIGARO"})
	assert.Contains(t, elements, Element{Kind: KindDirection, Text: "misurando"})
	assert.Contains(t, elements, Element{Kind: KindText, Text: "Cinque... dieci... venti..."})
}

func TestParseOperaAriasPageMissingDiv(t *testing.T) {
	_, err := parseOperaAriasPage([]byte("<html><body></body></html>"), "libretto_div")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "libretto_div")
}

func TestOperaAriasAcquire(t *testing.T) {
	var fetchedURL string
	source := &OperaAriasSource{fetch: func(url string) ([]byte, error) {
		fetchedURL = url
		return []byte(librettoPageHTML), nil
	}}

	acquired, err := source.Acquire("mozart/le-nozze-di-figaro", "it")
	require.NoError(t, err)
	assert.Equal(t, "https://www.opera-arias.com/mozart/le-nozze-di-figaro/libretto/", fetchedURL)
	assert.Equal(t, "it", acquired.Language)
	assert.Equal(t, "opera-arias.com", acquired.Source.Site)
	assert.NotEmpty(t, acquired.Elements)

	_, err = source.Acquire("mozart/le-nozze-di-figaro", "fr")
	require.Error(t, err)
}

func TestParseMurashevPage(t *testing.T) {
	html := `
	<html><body>
	<table>
	  <tr><td colspan="2"><b>ACT ONE</b></td></tr>
	  <tr>
	    <td>FIGARO<br>Five... ten... twenty...</td>
	    <td>FIGARO<br>Cinque... dieci... venti...</td>
	  </tr>
	  <tr>
	    <td><i>(measuring the floor)</i></td>
	    <td><i>(misurando)</i></td>
	  </tr>
	</table>
	</body></html>`

	rows, err := parseMurashevPage([]byte(html))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Index)
	assert.Contains(t, rows[0].Lang1Elements, Element{Kind: KindCharacter, Text: "FIGARO"})
	assert.Contains(t, rows[0].Lang1Elements, Element{Kind: KindText, Text: "Five... ten... twenty..."})
	assert.Contains(t, rows[0].Lang2Elements, Element{Kind: KindText, Text: "Cinque... dieci... venti..."})
	assert.Contains(t, rows[1].Lang1Elements, Element{Kind: KindDirection, Text: "(measuring the floor)"})
}

func TestParseMurashevPageNoRows(t *testing.T) {
	_, err := parseMurashevPage([]byte("<html><body><p>nothing here</p></body></html>"))
	require.Error(t, err)
}

func TestIsActHeader(t *testing.T) {
	assert.True(t, isActHeader("ATTO PRIMO"))
	assert.True(t, isActHeader("ACT ONE"))
	assert.True(t, isActHeader("Overture"))
	assert.True(t, isActHeader("Personaggi:"))
	assert.False(t, isActHeader("No. 1 - Duettino"))
	assert.False(t, isActHeader("Recitativo"))
}

func TestIsCharacterName(t *testing.T) {
	assert.True(t, isCharacterName("FIGARO"))
	assert.True(t, isCharacterName("SUSANNA e FIGARO"))
	assert.True(t, isCharacterName("IL CONTE"))
	assert.True(t, isCharacterName("SUSANNA, LA CONTESSA"))
	assert.True(t, isCharacterName("FIGARO (misurando)"))
	assert.False(t, isCharacterName("SCENE ONE"))
	assert.False(t, isCharacterName("SCENA I"))
	assert.False(t, isCharacterName("Five ... ten ..."))
}

func TestWriteText(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	acquired := &AcquiredText{
		Source:   SourceInfo{URL: "https://example.com", Site: "opera-arias.com", Opera: "mozart/figaro"},
		Language: "it",
		Elements: []Element{
			{Kind: KindCharacter, Text: "FIGARO"},
			{Kind: KindText, Text: "Cinque... dieci..."},
			{Kind: KindBlankLine},
			{Kind: KindBlankLine},
			{Kind: KindCharacter, Text: "SUSANNA"},
		},
	}
	require.NoError(t, WriteText(ctx, store, "raw/figaro", acquired))

	text, err := store.Read(ctx, "raw/figaro/italian.txt")
	require.NoError(t, err)
	assert.Equal(t, "FIGARO\nCinque... dieci...\n\nSUSANNA", string(text))

	md, err := store.Read(ctx, "raw/figaro/source.md")
	require.NoError(t, err)
	assert.Contains(t, string(md), "opera-arias.com")
}

func TestWriteBilingual(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	acquired := &BilingualLibretto{
		Source: SourceInfo{URL: "https://example.com", Site: "murashev.com", Opera: "figaro"},
		Lang1:  "en",
		Lang2:  "it",
		Rows: []BilingualRow{
			{
				Index:         0,
				Lang1Elements: []Element{{Kind: KindText, Text: "Five... ten..."}},
				Lang2Elements: []Element{{Kind: KindText, Text: "Cinque... dieci..."}},
			},
		},
	}
	require.NoError(t, WriteBilingual(ctx, store, "raw/figaro", acquired))

	assert.True(t, store.Exists(ctx, "raw/figaro/english.txt"))
	assert.True(t, store.Exists(ctx, "raw/figaro/italian.txt"))
	assert.True(t, store.Exists(ctx, "raw/figaro/bilingual.json"))
	assert.True(t, store.Exists(ctx, "raw/figaro/source.md"))
}
