package IO

import (
	"bufio"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/sentimentCNN/params"
)

// SingleByteOnly reports whether every byte of s is < 0x80. The default
// export filter: words that do not survive a single-byte encoding are
// dropped rather than written mangled.
func SingleByteOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// ExportEmbeddingsText writes the (possibly fine-tuned) embedding matrix in
// the same text format LoadEmbeddingsText consumes: one `<word> <v1> ... <vD>`
// line per vocabulary row. Reserved <unk>/<pad> rows are never written.
// Words rejected by keep (nil means SingleByteOnly) are skipped; the skip
// count is returned so the caller can log it. Components are formatted with
// the shortest representation that round-trips the exact float64.
func ExportEmbeddingsText(path string, emb *mat.Dense, vocab params.Vocabulary, keep func(string) bool) (int, error) {
	if keep == nil {
		keep = SingleByteOnly
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	rows, cols := emb.Dims()
	skipped := 0
	for i := 0; i < rows && i < len(vocab.IDToToken); i++ {
		if i == params.UnknownID || i == params.PaddingID {
			continue
		}
		word := vocab.IDToToken[i]
		if !keep(word) {
			skipped++
			continue
		}
		if _, err := w.WriteString(word); err != nil {
			return skipped, err
		}
		for j := 0; j < cols; j++ {
			if err := w.WriteByte(' '); err != nil {
				return skipped, err
			}
			if _, err := w.WriteString(strconv.FormatFloat(emb.At(i, j), 'g', -1, 64)); err != nil {
				return skipped, err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return skipped, err
		}
	}
	if err := w.Flush(); err != nil {
		return skipped, err
	}
	return skipped, nil
}
