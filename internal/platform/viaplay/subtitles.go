package viaplay

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
	"golang.org/x/net/html"

	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
)

var subtitleLangPattern = regexp.MustCompile(`_([a-z]+)`)

// Entities the Polish SAMI files use that are not HTML5 named references.
var polishEntities = strings.NewReplacer(
	"&aogon;", "ą", "&Aogon;", "Ą",
	"&cacute;", "ć", "&Cacute;", "Ć",
	"&eogon;", "ę", "&Eogon;", "Ę",
	"&lstrok;", "ł", "&Lstrok;", "Ł",
	"&nacute;", "ń", "&Nacute;", "Ń",
	"&sacute;", "ś", "&Sacute;", "Ś",
	"&zacute;", "ź", "&Zacute;", "Ź",
	"&zdot;", "ż", "&Zdot;", "Ż",
)

// SubtitleLanguage extracts the language tag from a subtitle URL, or
// "unknown".
func SubtitleLanguage(rawURL string) (string, bool) {
	m := subtitleLangPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "unknown", false
	}
	return m[1], true
}

// DecodeSAMI drops invalid UTF-8 and resolves HTML entities.
func DecodeSAMI(raw []byte, lang string) string {
	text := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
	if lang == "pl" {
		text = polishEntities.Replace(text)
	}
	return html.UnescapeString(text)
}

// DownloadSubtitles fetches each SAMI url and writes it to
// {tempdir}/{lang}.sami, overwriting earlier files of the same language.
// Paths are returned in input order.
func (c *Client) DownloadSubtitles(ctx context.Context, urls []string, pr ProgressReporter) ([]string, error) {
	paths := make([]string, 0, len(urls))

	for i, u := range urls {
		lang, ok := SubtitleLanguage(u)
		if !ok {
			c.log.Warn().Str(vlog.FieldURL, u).Msg("failed to identify subtitle language")
		}

		report(pr, ProgressReport{
			Type:    ProgressSubtitle,
			Step:    "DOWNLOADING",
			Current: i + 1,
			Total:   len(urls),
			Message: lang,
		})

		resp, err := c.Get(ctx, u, nil)
		if err != nil {
			return paths, fmt.Errorf("failed to download %s subtitles: %w", lang, err)
		}

		subtitle := []byte(DecodeSAMI(resp.Raw, lang))
		path := filepath.Join(c.store.TempDir(), lang+".sami")
		if err := renameio.WriteFile(path, subtitle, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write subtitles: %w", err)
		}

		c.log.Debug().Str(vlog.FieldLanguage, lang).Str(vlog.FieldPath, path).Msg("subtitles saved")
		report(pr, ProgressReport{
			Type:    ProgressSubtitle,
			Step:    "SAVED",
			Current: i + 1,
			Total:   len(urls),
			Message: path,
			Bytes:   int64(len(subtitle)),
		})
		paths = append(paths, path)
	}

	return paths, nil
}
