package IO

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/manningwu07/sentimentCNN/params"
)

// Example is one labeled, tokenized sentence. Label is 0 or 1.
type Example struct {
	Tokens []string
	Label  float64
}

// Encoded is an Example mapped to padded token ids of a fixed length.
type Encoded struct {
	IDs   []int
	Label float64
}

// LoadLabeledCorpus reads a `label<TAB>text` file, one example per line,
// tokenizing each text with tok. Labels must be "0" or "1"; anything else
// aborts the load.
func LoadLabeledCorpus(path string, tok Tokenizer) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20) // 1MB buffer
	var out []Example
	lineNum := 0
	for {
		line, readErr := r.ReadString('\n')
		if len(line) > 0 {
			lineNum++
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				label, text, ok := strings.Cut(line, "\t")
				if !ok {
					return nil, fmt.Errorf("corpus %s: line %d: missing tab separator", path, lineNum)
				}
				var y float64
				switch label {
				case "0":
					y = 0
				case "1":
					y = 1
				default:
					return nil, fmt.Errorf("corpus %s: line %d: label %q is not 0 or 1", path, lineNum, label)
				}
				toks := tok.Tokenize(text)
				if len(toks) > 0 {
					out = append(out, Example{Tokens: toks, Label: y})
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	return out, nil
}

// TokensOf strips labels, for feeding the vocabulary builder.
func TokensOf(examples []Example) [][]string {
	out := make([][]string, len(examples))
	for i, ex := range examples {
		out[i] = ex.Tokens
	}
	return out
}

// EncodeExamples maps tokens to vocabulary ids, truncating to seqLen and
// padding short sequences with <pad>.
func EncodeExamples(examples []Example, vocab params.Vocabulary, seqLen int) []Encoded {
	out := make([]Encoded, 0, len(examples))
	for _, ex := range examples {
		ids := make([]int, seqLen)
		for i := range ids {
			ids[i] = params.PaddingID
		}
		n := len(ex.Tokens)
		if n > seqLen {
			n = seqLen
		}
		for i := 0; i < n; i++ {
			ids[i] = vocab.Lookup(ex.Tokens[i])
		}
		out = append(out, Encoded{IDs: ids, Label: ex.Label})
	}
	return out
}

// Shuffle permutes data in place.
func Shuffle(data []Encoded, rng *rand.Rand) {
	rng.Shuffle(len(data), func(i, j int) {
		data[i], data[j] = data[j], data[i]
	})
}

// Batches splits data into fixed-size batches; the final short batch is kept.
func Batches(data []Encoded, batchSize int) [][]Encoded {
	if batchSize <= 0 {
		batchSize = 1
	}
	var out [][]Encoded
	for start := 0; start < len(data); start += batchSize {
		end := start + batchSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, data[start:end])
	}
	return out
}
