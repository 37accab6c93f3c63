package verify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// htmlSignificant characters are always removed from names.
const htmlSignificant = "<>&\"'`/\\"

// nameSymbols are the punctuation characters a name may keep.
const nameSymbols = "-_."

// SanitizeName normalizes a player name for display on the public board.
//
// The name is NFKC-normalized so that full-width and compatibility forms
// fold to their plain equivalents. HTML-significant characters, control
// characters and other symbols are dropped; letters, digits, marks and
// "-_." are kept. Runs of whitespace collapse to one space and the result
// is trimmed. Empty results and results longer than maxLen runes are
// rejected rather than truncated.
func SanitizeName(raw string, maxLen int) (string, error) {
	if !utf8.ValidString(raw) {
		return "", reject(KindValidation, ErrInvalidName, "not valid UTF-8")
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range norm.NFKC.String(raw) {
		switch {
		case strings.ContainsRune(htmlSignificant, r):
			continue
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsControl(r):
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), strings.ContainsRune(nameSymbols, r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	name := b.String()
	if name == "" {
		return "", reject(KindValidation, ErrInvalidName, "empty after sanitizing %q", raw)
	}
	if n := utf8.RuneCountInString(name); n > maxLen {
		return "", reject(KindValidation, ErrInvalidName, "%d runes, limit %d", n, maxLen)
	}
	return name, nil
}
