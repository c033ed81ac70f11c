package neighborhood

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type entry struct {
	name string
	key  string
}

// Extractor finds the neighborhood a text mentions from a fixed vocabulary.
//
// Names match as whole words after lowercasing and accent folding. When
// several names match, the longest wins so "Lagoa da Conceição" is preferred
// over "Lagoa"; equal lengths fall back to vocabulary order.
type Extractor struct {
	entries []entry
}

func NewExtractor(vocabulary []string) *Extractor {
	seen := make(map[string]bool, len(vocabulary))
	entries := make([]entry, 0, len(vocabulary))
	for _, name := range vocabulary {
		key := Fold(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry{name: name, key: key})
	}
	return &Extractor{entries: entries}
}

func NewFlorianopolisExtractor() *Extractor {
	return NewExtractor(Florianopolis)
}

// Extract returns the canonical spelling of the matched neighborhood.
func (e *Extractor) Extract(text string) (string, bool) {
	folded := Fold(text)
	if folded == "" {
		return "", false
	}

	best := -1
	for i, en := range e.entries {
		if best >= 0 && len(en.key) <= len(e.entries[best].key) {
			continue
		}
		if containsWord(folded, en.key) {
			best = i
		}
	}

	if best < 0 {
		return "", false
	}
	return e.entries[best].name, true
}

// Vocabulary returns the names in match order.
func (e *Extractor) Vocabulary() []string {
	names := make([]string, len(e.entries))
	for i, en := range e.entries {
		names[i] = en.name
	}
	return names
}

// Fold lowercases s, strips diacritics and collapses whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

func containsWord(text, word string) bool {
	for offset := 0; offset <= len(text)-len(word); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		offset = start + 1
	}
	return false
}

// isWordRune is false for utf8.RuneError, which marks either end of the text.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
