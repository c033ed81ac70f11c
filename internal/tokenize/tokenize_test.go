package tokenize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/processor"
)

// newTestWordPiece builds a small uncased BERT tokenizer.
func newTestWordPiece(t *testing.T) *WordPiece {
	t.Helper()

	vocab := model.Vocab{
		"[PAD]": 0, "[UNK]": 1, "[CLS]": 2, "[SEP]": 3, "[MASK]": 4,
		"ideia": 5, "##s": 6, "para": 7, "a": 8, "praca": 9, "do": 10, "centro": 11,
	}
	wp := wordpiece.NewWordPieceBuilder().Vocab(&vocab).UnkToken("[UNK]").Build()

	tk := tokenizer.NewTokenizer(wp)
	tk.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	tk.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
	tk.WithPostProcessor(processor.NewBertProcessing(
		processor.PostToken{Id: 3, Value: "[SEP]"},
		processor.PostToken{Id: 2, Value: "[CLS]"},
	))
	tk.AddSpecialTokens([]tokenizer.AddedToken{
		tokenizer.NewAddedToken("[CLS]", true),
		tokenizer.NewAddedToken("[SEP]", true),
	})

	return NewWordPiece(tk)
}

func TestWordPieceShortTextCountsSpecialTokens(t *testing.T) {
	wp := newTestWordPiece(t)

	span, count, err := wp.Truncate("ideia boa", ModelMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, "ideia boa", span)
	// [CLS] ideia [UNK] [SEP]
	assert.Equal(t, 4, count)
}

func TestWordPieceCutsAfterLastKeptSubword(t *testing.T) {
	wp := newTestWordPiece(t)

	// [CLS] ideia ##s para a praca [SEP], with room for three subwords
	span, count, err := wp.Truncate("ideias para a praca", 5)
	require.NoError(t, err)
	assert.Equal(t, "ideias para", span)
	assert.Equal(t, 5, count)
}

func TestWordPieceTruncatesToModelWindow(t *testing.T) {
	wp := newTestWordPiece(t)
	text := strings.Repeat("ideias para a praça do centro ", 200)

	span, count, err := wp.Truncate(text, ModelMaxTokens)
	require.NoError(t, err)

	assert.Equal(t, ModelMaxTokens, count)
	assert.Less(t, len(span), len(text))
	assert.True(t, strings.HasPrefix(text, span))
	assert.True(t, utf8.ValidString(span))

	_, recount, err := wp.Truncate(span, ModelMaxTokens*4)
	require.NoError(t, err)
	assert.LessOrEqual(t, recount, ModelMaxTokens)
}

func TestWhitespaceShortText(t *testing.T) {
	span, count, err := Whitespace{}.Truncate("  um dois   três ", 10)
	require.NoError(t, err)
	assert.Equal(t, "  um dois   três ", span)
	assert.Equal(t, 3, count)
}

func TestWhitespaceTruncates(t *testing.T) {
	words := make([]string, 700)
	for i := range words {
		words[i] = "ônibus"
	}
	text := strings.Join(words, " ")

	span, count, err := Whitespace{}.Truncate(text, ModelMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, ModelMaxTokens, count)
	assert.Len(t, strings.Fields(span), ModelMaxTokens)
	assert.True(t, strings.HasPrefix(text, span))
}

func TestCutAtKeepsRunesWhole(t *testing.T) {
	text := "ação"
	// byte 2 is inside "ç"
	assert.Equal(t, "a", cutAt(text, 2))
	assert.Equal(t, text, cutAt(text, 100))
}
