package conninfo

import (
	"strings"
)

// Beautify turns a machine key like "accept-language" into a label like "Accept Language". Separators become spaces
// and start a new word, words are capitalized, and a word starting with "ip" is rendered as the acronym "IP".
func Beautify(key string) string {
	var b strings.Builder
	b.Grow(len(key))

	runes := []rune(key)
	capitalize := true

	for i := 0; i < len(runes); i++ {
		c := runes[i]

		switch {
		case c == '-' || c == '_':
			b.WriteByte(' ')
			capitalize = true
		case capitalize && c == 'i' && i+1 < len(runes) && runes[i+1] == 'p':
			b.WriteString("IP")
			i++
			capitalize = false
		case capitalize && isASCIILetter(c):
			b.WriteRune(c &^ 0x20)
			capitalize = false
		default:
			b.WriteRune(c)
		}
	}

	return b.String()
}

func isASCIILetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
