package cue

import (
	"os"
	"path/filepath"
	"strings"
)

// NameTransform rewrites a FILE name from a cue sheet into a candidate name on
// disk. Transforms are tried in order until one names a readable file.
type NameTransform func(name string) string

// DefaultNameTransforms accepts the literal name, then the name without the
// track suffixes some dumps drop from single-track images.
var DefaultNameTransforms = []NameTransform{
	func(name string) string { return name },
	StripNamePart(" (Track 01)"),
	StripNamePart(" (Track 1)"),
}

// StripNamePart returns a transform that removes every occurrence of part.
func StripNamePart(part string) NameTransform {
	return func(name string) string {
		return strings.ReplaceAll(name, part, "")
	}
}

// resolveFile applies the transforms to name relative to baseDir. It returns
// the first readable regular file and every path tried.
func resolveFile(baseDir, name string, transforms []NameTransform) (string, os.FileInfo, []string) {
	var tried []string
	seen := make(map[string]bool)
	for _, transform := range transforms {
		candidate := filepath.Join(baseDir, transform(name))
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		tried = append(tried, candidate)

		if info, ok := readableFile(candidate); ok {
			return candidate, info, tried
		}
	}
	return "", nil, tried
}

func readableFile(path string) (os.FileInfo, bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}
