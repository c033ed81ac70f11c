package tokenize

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// ModelMaxTokens is the longest sequence the BERT rating models accept,
// special tokens included.
const ModelMaxTokens = 512

// WordPiece counts subword units with a model's own tokenizer.
type WordPiece struct {
	tk *tokenizer.Tokenizer
}

func NewWordPiece(tk *tokenizer.Tokenizer) *WordPiece {
	return &WordPiece{tk: tk}
}

// LoadWordPiece reads a tokenizer.json file.
func LoadWordPiece(path string) (*WordPiece, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer from %s: %w", path, err)
	}
	return NewWordPiece(tk), nil
}

// Truncate keeps the leading tokens, including the special tokens the model
// adds around the sequence, and cuts the text after the last kept token.
func (w *WordPiece) Truncate(text string, maxTokens int) (string, int, error) {
	en, err := w.tk.EncodeSingle(text, true)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode text: %w", err)
	}
	if len(en.Ids) <= maxTokens {
		return text, len(en.Ids), nil
	}

	// one slot stays reserved for the closing special token
	end := 0
	for i := 0; i < maxTokens-1 && i < len(en.Offsets); i++ {
		if i < len(en.SpecialTokenMask) && en.SpecialTokenMask[i] == 1 {
			continue
		}
		if len(en.Offsets[i]) == 2 && en.Offsets[i][1] > end {
			end = en.Offsets[i][1]
		}
	}

	return cutAt(text, end), maxTokens, nil
}

// Whitespace treats every whitespace separated word as one unit. It backs
// the lexicon model and stands in while a subword tokenizer is unavailable.
type Whitespace struct{}

func (Whitespace) Truncate(text string, maxTokens int) (string, int, error) {
	count := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord && count == maxTokens {
				return text[:i], count, nil
			}
			inWord = false
			continue
		}
		if !inWord {
			inWord = true
			count++
		}
	}
	return text, count, nil
}

func cutAt(text string, end int) string {
	if end >= len(text) {
		return text
	}
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end]
}
