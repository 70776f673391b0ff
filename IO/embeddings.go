package IO

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Embeddings is a parsed pretrained embedding file: one row per word, all
// rows sharing one dimensionality.
type Embeddings struct {
	Words   []string
	Index   map[string]int
	Vectors *mat.Dense // (|V| x Dim)
	Dim     int
}

// Vector returns a copy of the row for word, or false if absent.
func (e *Embeddings) Vector(word string) ([]float64, bool) {
	i, ok := e.Index[word]
	if !ok {
		return nil, false
	}
	out := make([]float64, e.Dim)
	mat.Row(out, i, e.Vectors)
	return out, true
}

// FormatError reports a malformed embedding file.
type FormatError struct {
	Path   string
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("embedding file %s: line %d: %s", e.Path, e.Line, e.Reason)
}

// Parsed files are cached by path so repeated loads in one run are free.
// All callers are single-threaded.
var embCache = map[string]*Embeddings{}

// DropEmbeddingCache clears the per-path cache.
func DropEmbeddingCache() {
	embCache = map[string]*Embeddings{}
}

// LoadEmbeddingsText parses a whitespace-delimited embedding file:
// one `<word> <v1> ... <vD>` entry per line, no header. The first line fixes
// D; any later line with a different float count, or an unparseable float,
// fails with *FormatError. Duplicate words keep the last occurrence.
func LoadEmbeddingsText(path string) (*Embeddings, error) {
	if cached, ok := embCache[path]; ok {
		return cached, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20) // 1MB buffer
	var (
		words   []string
		index   = map[string]int{}
		data    []float64
		dim     = -1
		lineNum int
	)
	for {
		line, readErr := r.ReadString('\n')
		if len(line) > 0 {
			lineNum++
			fields := strings.Fields(line)
			if len(fields) == 0 {
				// blank line, tolerate
			} else {
				if len(fields) < 2 {
					return nil, &FormatError{Path: path, Line: lineNum, Reason: "entry has no vector components"}
				}
				word := fields[0]
				if dim < 0 {
					dim = len(fields) - 1
				} else if len(fields)-1 != dim {
					return nil, &FormatError{
						Path: path, Line: lineNum,
						Reason: fmt.Sprintf("vector has %d components, expected %d", len(fields)-1, dim),
					}
				}
				row := make([]float64, dim)
				for j, tok := range fields[1:] {
					v, perr := strconv.ParseFloat(tok, 64)
					if perr != nil {
						return nil, &FormatError{
							Path: path, Line: lineNum,
							Reason: fmt.Sprintf("bad numeric token %q", tok),
						}
					}
					row[j] = v
				}
				if at, seen := index[word]; seen {
					copy(data[at*dim:(at+1)*dim], row)
				} else {
					index[word] = len(words)
					words = append(words, word)
					data = append(data, row...)
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
	if dim < 0 {
		return nil, &FormatError{Path: path, Line: 0, Reason: "file holds no entries"}
	}

	e := &Embeddings{
		Words:   words,
		Index:   index,
		Vectors: mat.NewDense(len(words), dim, data),
		Dim:     dim,
	}
	embCache[path] = e
	return e, nil
}
