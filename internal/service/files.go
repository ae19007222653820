package service

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// datePrefix matches the "2026-01-08_" prefix of exported activity file names
var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_`)

// ActivityGarminID extracts the platform activity id from a FIT file stem.
// Stems are either the bare id ("21487950438") or descriptive with the id as
// the last underscore-separated segment
// ("2026-01-08_New_York_-_Quality_Session_21487950438"). Other stems are
// returned unchanged.
func ActivityGarminID(stem string) string {
	if isDigits(stem) {
		return stem
	}
	parts := strings.Split(stem, "_")
	if last := parts[len(parts)-1]; isDigits(last) {
		return last
	}
	return stem
}

// DisplayName derives a human readable activity name from a FIT file stem,
// dropping the date prefix and the trailing activity id.
// Bare-id stems become "Run <id>".
func DisplayName(stem string) string {
	id := ActivityGarminID(stem)
	if stem == id && isDigits(stem) {
		return "Run " + stem
	}

	name := datePrefix.ReplaceAllString(stem, "")
	if id != stem {
		name = strings.TrimSuffix(name, id)
	}
	name = strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " ")
	if name == "" {
		return "Run " + id
	}
	return name
}

// scanFitFiles lists FIT files in dir keyed by activity id. When several files
// share an id the longer, more descriptive stem wins. A missing directory has
// no files.
func scanFitFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fit directory: %w", err)
	}

	byID := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), FitExt) {
			continue
		}
		stem := stemOf(e.Name())
		id := ActivityGarminID(stem)
		if existing, ok := byID[id]; !ok || len(stem) > len(stemOf(existing)) {
			byID[id] = filepath.Join(dir, e.Name())
		}
	}
	return byID, nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// validID rejects ids that could escape the FIT directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." &&
		!strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
