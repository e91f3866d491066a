// Package pkg ties the disc image tools together into the PSIO preparation
// pipeline. This file derives the file and directory names used on the SD card.
package pkg

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	discSuffix  = regexp.MustCompile(`\s*\(Disc \d+\)$`)
	trackSuffix = regexp.MustCompile(`\s*\(Track[^)]*\)$`)
	spaceRun    = regexp.MustCompile(`\s+`)
)

// FoldASCII reduces s to printable ASCII that FAT file systems accept.
// Accented letters lose their marks, a colon becomes " -" and characters
// without an ASCII form are dropped.
func FoldASCII(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ':':
			b.WriteString(" -")
		case strings.ContainsRune(`<>"/\|?*`, r):
		case r < 0x20 || r > 0x7E:
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}

// DisplayName builds the name of the bin/cu2 pair for a database title.
// The title is capped at maxLength characters and discs numbered above zero
// get a " (Disc N)" suffix, keeping the whole name within the PSIO limit.
func DisplayName(title string, disc, maxLength int) string {
	name := FoldASCII(title)
	if maxLength > 0 && len(name) > maxLength {
		name = strings.TrimRight(name[:maxLength], " ")
	}
	if disc > 0 {
		return fmt.Sprintf("%s (Disc %d)", name, disc)
	}
	return name
}

// DirectoryName returns the game directory for a display name. All discs of
// a title share one directory.
func DirectoryName(name string) string {
	return discSuffix.ReplaceAllString(name, "")
}

// CueFallbackName derives a display name from the first FILE entry of a cue
// sheet when the disc is not in the database: "Game (Track 1).bin" becomes
// "Game".
func CueFallbackName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = trackSuffix.ReplaceAllString(base, "")
	return FoldASCII(strings.ReplaceAll(base, ".", "-"))
}
