package IO

import (
	"encoding/json"
	"os"

	"github.com/manningwu07/sentimentCNN/params"
)

// SaveVocabJSON persists the vocabulary so a trained checkpoint can be used
// without rebuilding it from the corpus.
func SaveVocabJSON(path string, vocab params.Vocabulary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(vocab)
}

func LoadVocabJSON(path string) (params.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return params.Vocabulary{}, err
	}
	defer f.Close()
	var vocab params.Vocabulary
	if err := json.NewDecoder(f).Decode(&vocab); err != nil {
		return params.Vocabulary{}, err
	}
	return vocab, nil
}
