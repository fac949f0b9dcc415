package repo

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	octetPattern      = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespacePattern = regexp.MustCompile(`[\r\n\t ]+`)
	dashRunPattern    = regexp.MustCompile(`[\r\n\t -]+`)
)

// fileNameSpecialChars are removed from file names and option keys.
const fileNameSpecialChars = "?[]/\\=<>:;,'\"&$#*()|~`!{}%+’«»”“\x00"

// SanitizeText cleans a single-line text value: invalid UTF-8 is dropped,
// tags and percent-encoded octets are removed, and runs of whitespace
// collapse to one space.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = tagPattern.ReplaceAllString(s, "")
	s = octetPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizeFileName makes s safe for use as a file name or option key:
// accents are folded to ASCII where possible, special characters are removed,
// whitespace becomes a dash and leading or trailing ".-_" are trimmed.
func SanitizeFileName(s string) string {
	s = foldAccents(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(fileNameSpecialChars, r) {
			return -1
		}
		return r
	}, s)
	s = dashRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, ".-_")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
