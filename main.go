package main

import (
	"flag"
	"fmt"
	"math/rand"

	"github.com/manningwu07/sentimentCNN/IO"
	"github.com/manningwu07/sentimentCNN/cnn"
	"github.com/manningwu07/sentimentCNN/params"
)

var (
	trainFlag     bool
	classifyFlag  bool
	neighborsFlag string
	bpeFlag       bool

	embPath    string
	corpusPath string
	valPath    string
	ckptPath   string
	vocabPath  string
	outPath    string
	curvesPath string
	tokPath    string
	topK       int
)

func init() {
	flag.BoolVar(&trainFlag, "train", false, "Train the classifier and export fine-tuned embeddings")
	flag.BoolVar(&classifyFlag, "classify", false, "Run the interactive classify CLI against a saved checkpoint")
	flag.StringVar(&neighborsFlag, "neighbors", "", "Print nearest neighbors of a word in the exported embeddings")
	flag.BoolVar(&bpeFlag, "bpe", false, "Tokenize with a trained BPE tokenizer instead of whole words")

	flag.StringVar(&embPath, "emb", "data/embeddings.txt", "Pretrained embedding file (word + floats per line)")
	flag.StringVar(&corpusPath, "corpus", "data/train.tsv", "Training corpus (label<TAB>text per line)")
	flag.StringVar(&valPath, "val", "data/val.tsv", "Validation corpus")
	flag.StringVar(&ckptPath, "ckpt", "models/best_model.gob", "Checkpoint path")
	flag.StringVar(&vocabPath, "vocab", "models/vocab.json", "Vocabulary path")
	flag.StringVar(&outPath, "out", "models/finetuned_embeddings.txt", "Exported embedding file")
	flag.StringVar(&curvesPath, "curves", "models/curves.html", "Training curves HTML page")
	flag.StringVar(&tokPath, "tok", "models/tokenizer.json", "BPE tokenizer path (with -bpe)")
	flag.IntVar(&topK, "topk", 10, "Neighbor count (with -neighbors)")
}

func main() {
	flag.Parse()

	switch {
	case trainFlag:
		if err := runTraining(); err != nil {
			panic(err)
		}
	case classifyFlag:
		m, vocab, err := loadTrained()
		if err != nil {
			panic(err)
		}
		ClassifyCLI(m, vocab, pickTokenizer())
	case neighborsFlag != "":
		if err := PrintNeighbors(outPath, neighborsFlag, topK); err != nil {
			panic(err)
		}
	default:
		flag.Usage()
	}
}

func pickTokenizer() IO.Tokenizer {
	if bpeFlag {
		tok, err := IO.NewBPETokenizer(corpusPath, tokPath, params.DefaultConfig().MaxVocab)
		if err != nil {
			panic(err)
		}
		return tok
	}
	return IO.WordTokenizer{}
}

func runTraining() error {
	cfg := params.DefaultConfig()
	tok := pickTokenizer()

	table, err := IO.LoadEmbeddingsText(embPath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d pretrained vectors of dim %d\n", len(table.Words), table.Dim)

	trainEx, err := IO.LoadLabeledCorpus(corpusPath, tok)
	if err != nil {
		return err
	}
	valEx, err := IO.LoadLabeledCorpus(valPath, tok)
	if err != nil {
		return err
	}
	fmt.Printf("Corpus: %d train / %d val examples\n", len(trainEx), len(valEx))

	vocab, embMat, err := IO.BuildVocab(IO.TokensOf(trainEx), cfg.MaxVocab, table, 0, IO.NormalInitializer(cfg.Seed))
	if err != nil {
		return err
	}
	fmt.Printf("Vocab: %d tokens (cap %d + reserved)\n", vocab.Size(), cfg.MaxVocab)
	if err := IO.SaveVocabJSON(vocabPath, vocab); err != nil {
		return err
	}

	m := cnn.NewTextCNN(embMat, cfg.FilterWidths, cfg.NumFilters, cfg.Dropout,
		rand.New(rand.NewSource(int64(cfg.Seed))))
	trainData := IO.EncodeExamples(trainEx, vocab, cfg.SeqLen)
	valData := IO.EncodeExamples(valEx, vocab, cfg.SeqLen)

	report, err := TrainSentiment(m, trainData, valData, cfg, TrainOptions{CheckpointPath: ckptPath})
	if err != nil {
		return err
	}
	best := report.Best
	if best == nil {
		best = m
	}
	fmt.Printf("Best epoch %d (val loss %.4f)\n", report.BestEpoch, report.BestValLoss)

	skipped, err := IO.ExportEmbeddingsText(outPath, best.Emb, vocab, nil)
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Printf("Export: skipped %d words that do not survive single-byte encoding\n", skipped)
	}
	fmt.Printf("Exported fine-tuned embeddings to %s\n", outPath)

	fmt.Println("Validation accuracy per epoch:")
	asciiPlot(report.ValAcc)
	if err := WriteTrainingCurves(curvesPath, report); err != nil {
		return err
	}
	fmt.Printf("Wrote training curves to %s\n", curvesPath)
	return nil
}

func loadTrained() (*cnn.TextCNN, params.Vocabulary, error) {
	m, err := cnn.LoadCheckpoint(ckptPath)
	if err != nil {
		return nil, params.Vocabulary{}, err
	}
	vocab, err := IO.LoadVocabJSON(vocabPath)
	if err != nil {
		return nil, params.Vocabulary{}, err
	}
	return m, vocab, nil
}
