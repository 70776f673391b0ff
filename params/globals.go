package params

// Embed structs and shared types
type Vocabulary struct {
	TokenToID map[string]int
	IDToToken []string
}

// Reserved tokens. <unk> and <pad> always occupy the first two ids so the
// embedding matrix rows 0 and 1 can be zeroed once and left alone.
const (
	UnknownToken = "<unk>"
	PaddingToken = "<pad>"

	UnknownID = 0
	PaddingID = 1
)

func (v Vocabulary) Size() int {
	return len(v.IDToToken)
}

// Lookup maps a token to its id, falling back to <unk>.
func (v Vocabulary) Lookup(tok string) int {
	if id, ok := v.TokenToID[tok]; ok {
		return id
	}
	return UnknownID
}

type TrainingConfig struct {
	// Model parameters
	MaxVocab     int   // cap on corpus tokens kept (reserved tokens excluded)
	SeqLen       int   // pad/truncate length for every example
	FilterWidths []int // one parallel convolution per width
	NumFilters   int   // filters per width
	Dropout      float64

	// Optimization parameters
	LR          float64 // learning rate for conv + output layers
	EmbLR       float64 // learning rate for the embedding matrix once unfrozen
	AdamBeta1   float64 // default 0.9
	AdamBeta2   float64 // default 0.999
	AdamEps     float64 // default 1e-8
	WeightDecay float64 // AdamW-style; 0 disables
	GradClip    float64 // <=0 disables

	MaxEpochs int // fixed number of epochs, no early stopping
	FreezeFor int // epochs to keep the embedding matrix frozen
	BatchSize int
	Seed      uint64
}

func DefaultConfig() TrainingConfig {
	return TrainingConfig{
		MaxVocab:     25_000,
		SeqLen:       64,
		FilterWidths: []int{3, 4, 5},
		NumFilters:   100,
		Dropout:      0.5,

		LR:          0.001,
		EmbLR:       0.0001,
		AdamBeta1:   0.9,
		AdamBeta2:   0.999,
		AdamEps:     1e-8,
		WeightDecay: 0.0,
		GradClip:    1.0,

		MaxEpochs: 10,
		FreezeFor: 5,
		BatchSize: 64,
		Seed:      1234,
	}
}
