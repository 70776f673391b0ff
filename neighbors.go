package main

import (
	"fmt"
	"os"

	"github.com/ynqa/wego/pkg/embedding"
	"github.com/ynqa/wego/pkg/search"
)

// PrintNeighbors loads an exported embedding file and prints the k nearest
// neighbors of word by cosine similarity. Handy for eyeballing what
// fine-tuning did to the vectors.
func PrintNeighbors(path, word string, k int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	embs, err := embedding.Load(f)
	if err != nil {
		return err
	}
	searcher, err := search.New(embs...)
	if err != nil {
		return err
	}
	neighbors, err := searcher.SearchInternal(word, k)
	if err != nil {
		return err
	}
	fmt.Printf("Nearest to %q:\n", word)
	for _, n := range neighbors {
		fmt.Printf("  %2d. %-20s %.4f\n", n.Rank, n.Word, n.Similarity)
	}
	return nil
}
