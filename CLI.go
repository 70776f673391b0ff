package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/manningwu07/sentimentCNN/IO"
	"github.com/manningwu07/sentimentCNN/cnn"
	"github.com/manningwu07/sentimentCNN/params"
)

// ClassifyCLI scores sentences typed on stdin with a trained model.
func ClassifyCLI(m *cnn.TextCNN, vocab params.Vocabulary, tok IO.Tokenizer) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Sentiment CLI. Type 'exit' to quit.")
	for {
		fmt.Print("You: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "exit" {
			break
		}
		if input == "" {
			continue
		}
		ex := IO.Example{Tokens: tok.Tokenize(input)}
		enc := IO.EncodeExamples([]IO.Example{ex}, vocab, len(ex.Tokens))
		p := m.Score(enc[0].IDs)
		verdict := "negative"
		if p >= 0.5 {
			verdict = "positive"
		}
		fmt.Printf("Bot: %s (p=%.3f)\n", verdict, p)
	}
}
