package IO

import (
	"errors"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/manningwu07/sentimentCNN/params"
)

// Initializer draws a fresh vector for a vocabulary word with no pretrained
// embedding.
type Initializer func(n int) []float64

// NormalInitializer draws each component from a standard normal.
func NormalInitializer(seed uint64) Initializer {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	return func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = dist.Rand()
		}
		return out
	}
}

// BuildVocab counts token frequencies across the corpus, keeps the top
// maxSize tokens (frequency descending, ties broken by first-seen order),
// and prepends the reserved <unk>/<pad> tokens at ids 0 and 1.
//
// The returned matrix is (V x D). D comes from the table when one is given,
// otherwise from dim. Rows for words present in the table are copied
// exactly; absent words are drawn from init (nil means a standard normal);
// the <unk> and <pad> rows are forced to zero after the copy.
func BuildVocab(examples [][]string, maxSize int, table *Embeddings, dim int, init Initializer) (params.Vocabulary, *mat.Dense, error) {
	if maxSize <= 0 {
		return params.Vocabulary{}, nil, errors.New("BuildVocab: max vocab size must be positive")
	}
	if table != nil {
		dim = table.Dim
	}
	if dim <= 0 {
		return params.Vocabulary{}, nil, errors.New("BuildVocab: no embedding table and no dimensionality given")
	}
	if init == nil {
		init = NormalInitializer(1)
	}

	counts := make(map[string]int, 1<<15)
	var order []string // first-seen order, the tie-break for equal counts
	for _, toks := range examples {
		for _, t := range toks {
			if t == "" || t == params.UnknownToken || t == params.PaddingToken {
				continue
			}
			if _, seen := counts[t]; !seen {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxSize {
		order = order[:maxSize]
	}

	idToToken := make([]string, 0, len(order)+2)
	idToToken = append(idToToken, params.UnknownToken, params.PaddingToken)
	idToToken = append(idToToken, order...)
	tok2id := make(map[string]int, len(idToToken))
	for i, t := range idToToken {
		tok2id[t] = i
	}
	vocab := params.Vocabulary{TokenToID: tok2id, IDToToken: idToToken}

	emb := mat.NewDense(len(idToToken), dim, nil)
	for i := 2; i < len(idToToken); i++ {
		var row []float64
		if table != nil {
			if v, ok := table.Vector(idToToken[i]); ok {
				row = v
			}
		}
		if row == nil {
			row = init(dim)
		}
		emb.SetRow(i, row)
	}
	// rows 0 and 1 (<unk>, <pad>) stay zero
	return vocab, emb, nil
}
