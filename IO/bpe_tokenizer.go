package IO

import (
	"os"
	"path/filepath"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/models"
	"github.com/sugarme/tokenizer/normalizers"
	"github.com/sugarme/tokenizer/pretokenizers"
	"github.com/sugarme/tokenizer/trainers"

	"github.com/manningwu07/sentimentCNN/params"
)

// BPETokenizer wraps a trained subword tokenizer. Its pieces flow through
// the same vocabulary builder as plain words.
type BPETokenizer struct {
	t *tk.Tokenizer
}

// NewBPETokenizer loads tokPath if it exists, otherwise trains a BPE
// tokenizer on corpusPath and saves it there.
func NewBPETokenizer(corpusPath, tokPath string, vocabSize int) (*BPETokenizer, error) {
	if _, err := os.Stat(tokPath); err == nil {
		t, err := tk.FromFile(tokPath)
		if err != nil {
			return nil, err
		}
		return &BPETokenizer{t: t}, nil
	}

	bpe := models.NewBPE()
	t := tk.NewTokenizer(bpe)

	// Normalize to NFKC lower for English
	t.WithNormalizer(normalizers.NewSequence(
		normalizers.NewNFKC(),
		normalizers.NewLowercase(),
	))
	t.WithPreTokenizer(pretokenizers.NewWhitespaceSplit())

	tr := trainers.NewBpeTrainer()
	tr.VocabSize = vocabSize
	tr.SpecialTokens = []string{params.UnknownToken, params.PaddingToken}

	if err := t.Train(tr, []string{corpusPath}); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(tokPath), 0o755); err != nil {
		return nil, err
	}
	if err := t.Save(tokPath); err != nil {
		return nil, err
	}
	return &BPETokenizer{t: t}, nil
}

func (b *BPETokenizer) Tokenize(text string) []string {
	enc, err := b.t.EncodeSingle(text)
	if err != nil {
		return nil
	}
	return enc.Tokens
}
