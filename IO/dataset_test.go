package IO

import (
	"reflect"
	"testing"

	"github.com/manningwu07/sentimentCNN/params"
)

func TestWordTokenizer(t *testing.T) {
	tok := WordTokenizer{}
	got := tok.Tokenize("It's GREAT, really -- 10/10 café!")
	want := []string{"it's", "great", "really", "10", "10", "caf"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
}

func TestLoadLabeledCorpus(t *testing.T) {
	path := writeTemp(t, "train.tsv", "1\tGreat movie\n0\tterrible film\n\n1\tloved it\n")
	examples, err := LoadLabeledCorpus(path, WordTokenizer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(examples) != 3 {
		t.Fatalf("examples = %d, want 3", len(examples))
	}
	if examples[0].Label != 1 || examples[1].Label != 0 {
		t.Fatalf("labels = %v/%v, want 1/0", examples[0].Label, examples[1].Label)
	}
	if !reflect.DeepEqual(examples[1].Tokens, []string{"terrible", "film"}) {
		t.Fatalf("tokens = %v", examples[1].Tokens)
	}
}

func TestLoadLabeledCorpusRejectsBadLabel(t *testing.T) {
	path := writeTemp(t, "train.tsv", "2\tnope\n")
	if _, err := LoadLabeledCorpus(path, WordTokenizer{}); err == nil {
		t.Fatal("expected error for label outside {0,1}")
	}
	path = writeTemp(t, "train2.tsv", "no tab here\n")
	if _, err := LoadLabeledCorpus(path, WordTokenizer{}); err == nil {
		t.Fatal("expected error for missing tab")
	}
}

func TestEncodeExamplesPadAndTruncate(t *testing.T) {
	vocab := testVocab("good", "bad")
	examples := []Example{
		{Tokens: []string{"good"}, Label: 1},
		{Tokens: []string{"bad", "bad", "mystery", "bad", "bad"}, Label: 0},
	}
	enc := EncodeExamples(examples, vocab, 4)

	want0 := []int{2, params.PaddingID, params.PaddingID, params.PaddingID}
	if !reflect.DeepEqual(enc[0].IDs, want0) {
		t.Fatalf("ids = %v, want %v", enc[0].IDs, want0)
	}
	want1 := []int{3, 3, params.UnknownID, 3} // truncated to 4, OOV -> <unk>
	if !reflect.DeepEqual(enc[1].IDs, want1) {
		t.Fatalf("ids = %v, want %v", enc[1].IDs, want1)
	}
}

func TestBatches(t *testing.T) {
	data := make([]Encoded, 7)
	batches := Batches(data, 3)
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	if len(batches[2]) != 1 {
		t.Fatalf("last batch = %d examples, want 1", len(batches[2]))
	}
}
