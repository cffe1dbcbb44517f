package chunk

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts text to and from model token units. Encode and
// Decode must be inverses over the token sequences Encode produces.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// EncodingCL100K is the BPE encoding shared by current OpenAI embedding
// and chat models.
const EncodingCL100K = "cl100k_base"

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var _ Tokenizer = (*tiktokenTokenizer)(nil)

// NewTiktokenTokenizer returns a Tokenizer backed by the named tiktoken
// BPE encoding. The encoding dictionary is fetched on first use and
// cached by the tiktoken library.
func NewTiktokenTokenizer(encoding string) (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding %q: %w", encoding, err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
