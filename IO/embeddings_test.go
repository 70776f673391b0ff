package IO

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/sentimentCNN/params"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmbeddingsText(t *testing.T) {
	DropEmbeddingCache()
	path := writeTemp(t, "emb.txt", "good 1 2 3\nbad -1 -2.5 0.125\n")

	e, err := LoadEmbeddingsText(path)
	if err != nil {
		t.Fatal(err)
	}
	if e.Dim != 3 {
		t.Fatalf("dim = %d, want 3", e.Dim)
	}
	if len(e.Words) != 2 {
		t.Fatalf("words = %d, want 2", len(e.Words))
	}
	v, ok := e.Vector("bad")
	if !ok {
		t.Fatal("missing vector for bad")
	}
	want := []float64{-1, -2.5, 0.125}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("bad[%d] = %v, want %v", i, v[i], want[i])
		}
	}
	if _, ok := e.Vector("ugly"); ok {
		t.Fatal("unexpected vector for absent word")
	}
}

func TestLoadEmbeddingsDuplicateKeepsLast(t *testing.T) {
	DropEmbeddingCache()
	path := writeTemp(t, "emb.txt", "w 1 1\nw 2 2\n")
	e, err := LoadEmbeddingsText(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Words) != 1 {
		t.Fatalf("words = %d, want 1", len(e.Words))
	}
	v, _ := e.Vector("w")
	if v[0] != 2 || v[1] != 2 {
		t.Fatalf("duplicate should keep last row, got %v", v)
	}
}

func TestLoadEmbeddingsFormatErrors(t *testing.T) {
	cases := []struct {
		name, content string
	}{
		{"inconsistent dim", "a 1 2 3\nb 1 2\n"},
		{"bad float", "a 1 2\nb 1 two\n"},
		{"no components", "justaword\n"},
		{"empty file", ""},
	}
	for _, tc := range cases {
		DropEmbeddingCache()
		path := writeTemp(t, "emb.txt", tc.content)
		_, err := LoadEmbeddingsText(path)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("%s: err = %v, want *FormatError", tc.name, err)
		}
	}
}

func TestLoadEmbeddingsCache(t *testing.T) {
	DropEmbeddingCache()
	path := writeTemp(t, "emb.txt", "a 1 2\n")
	first, err := LoadEmbeddingsText(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := LoadEmbeddingsText(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("second load did not hit the cache")
	}
	DropEmbeddingCache()
	third, err := LoadEmbeddingsText(path)
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Fatal("cache survived DropEmbeddingCache")
	}
}

func testVocab(tokens ...string) params.Vocabulary {
	id2tok := append([]string{params.UnknownToken, params.PaddingToken}, tokens...)
	tok2id := map[string]int{}
	for i, tk := range id2tok {
		tok2id[tk] = i
	}
	return params.Vocabulary{TokenToID: tok2id, IDToToken: id2tok}
}

func TestExportRoundTrip(t *testing.T) {
	DropEmbeddingCache()
	vocab := testVocab("good", "bad", "fine")
	emb := mat.NewDense(5, 3, []float64{
		0, 0, 0,
		0, 0, 0,
		0.1, -2.25, 1e-7,
		3.14159265358979, -0.5, 42,
		1.0 / 3.0, 2, -1e300,
	})

	out := filepath.Join(t.TempDir(), "export.txt")
	skipped, err := ExportEmbeddingsText(out, emb, vocab, nil)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}

	re, err := LoadEmbeddingsText(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(re.Words) != 3 {
		t.Fatalf("reloaded %d words, want 3 (reserved rows must not be written)", len(re.Words))
	}
	for i := 2; i < 5; i++ {
		word := vocab.IDToToken[i]
		v, ok := re.Vector(word)
		if !ok {
			t.Fatalf("word %q lost in round trip", word)
		}
		for j := 0; j < 3; j++ {
			if v[j] != emb.At(i, j) {
				t.Fatalf("%s[%d] = %v, want %v", word, j, v[j], emb.At(i, j))
			}
		}
	}
}

func TestExportSkipsUnrepresentableWords(t *testing.T) {
	vocab := testVocab("ok", "café")
	emb := mat.NewDense(4, 2, nil)
	out := filepath.Join(t.TempDir(), "export.txt")
	skipped, err := ExportEmbeddingsText(out, emb, vocab, nil)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}

	DropEmbeddingCache()
	re, err := LoadEmbeddingsText(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := re.Index["café"]; ok {
		t.Fatal("non-single-byte word written despite filter")
	}
	if _, ok := re.Index["ok"]; !ok {
		t.Fatal("single-byte word missing from export")
	}
}

func TestExportCustomPredicate(t *testing.T) {
	vocab := testVocab("keep", "drop")
	emb := mat.NewDense(4, 1, nil)
	out := filepath.Join(t.TempDir(), "export.txt")
	skipped, err := ExportEmbeddingsText(out, emb, vocab, func(w string) bool { return w != "drop" })
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
}
