package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"librettist/internal/normalize"
	"librettist/internal/storage"
)

// WriteText writes a single-language acquisition under dir in the store:
// "{language}.txt" plus "source.md" with provenance.
func WriteText(ctx context.Context, store storage.Store, dir string, acquired *AcquiredText) error {
	text := normalize.CollapseBlankLines(normalize.Text(PlainText(acquired.Elements)))
	name := LanguageName(acquired.Language) + ".txt"
	if err := store.Write(ctx, path.Join(dir, name), []byte(text)); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	slog.Info("wrote libretto text", "file", path.Join(dir, name), "language", acquired.Language)

	return writeSourceMD(ctx, store, dir, &acquired.Source, LanguageName(acquired.Language))
}

// WriteBilingual writes a bilingual acquisition under dir in the store:
// one text file per language, "bilingual.json" with the aligned rows,
// and "source.md".
func WriteBilingual(ctx context.Context, store storage.Store, dir string, acquired *BilingualLibretto) error {
	for _, part := range []struct {
		lang string
		text string
	}{
		{acquired.Lang1, acquired.Lang1Text()},
		{acquired.Lang2, acquired.Lang2Text()},
	} {
		text := normalize.CollapseBlankLines(normalize.Text(part.text))
		name := LanguageName(part.lang) + ".txt"
		if err := store.Write(ctx, path.Join(dir, name), []byte(text)); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		slog.Info("wrote libretto text", "file", path.Join(dir, name), "language", part.lang)
	}

	if err := storage.WriteJSON(ctx, store, path.Join(dir, "bilingual.json"), acquired); err != nil {
		return err
	}
	slog.Info("wrote aligned rows", "file", path.Join(dir, "bilingual.json"), "rows", len(acquired.Rows))

	languages := LanguageName(acquired.Lang1) + " + " + LanguageName(acquired.Lang2)
	return writeSourceMD(ctx, store, dir, &acquired.Source, languages)
}

func writeSourceMD(ctx context.Context, store storage.Store, dir string, source *SourceInfo, languages string) error {
	md := fmt.Sprintf(
		"# Source\n\n- **Site:** %s\n- **URL:** %s\n- **Opera:** %s\n- **Fetched:** %s\n- **Languages:** %s\n",
		source.Site, source.URL, source.Opera, source.FetchedAt, languages,
	)
	if err := store.Write(ctx, path.Join(dir, "source.md"), []byte(md)); err != nil {
		return fmt.Errorf("failed to write source.md: %w", err)
	}
	return nil
}
