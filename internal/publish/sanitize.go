// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const maxNameRunes = 50

// unsafeNameChars matches everything outside letters, digits, underscore,
// whitespace and hyphen.
var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// SanitizeName reduces s to characters that are safe in a filename and
// truncates it to 50 runes. An empty result yields fallback.
func SanitizeName(s, fallback string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(unsafeNameChars.ReplaceAllString(s, ""))
	if r := []rune(s); len(r) > maxNameRunes {
		s = strings.TrimSpace(string(r[:maxNameRunes]))
	}
	if s == "" {
		return fallback
	}
	return s
}

// dateLayout is the date prefix of every document filename.
const dateLayout = "2006-01-02"

// DocumentFilename returns "{date}_{name}.{ext}".
func DocumentFilename(date time.Time, name, ext string) string {
	return date.Format(dateLayout) + "_" + name + "." + ext
}
