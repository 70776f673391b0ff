package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/sentimentCNN/IO"
	"github.com/manningwu07/sentimentCNN/cnn"
	"github.com/manningwu07/sentimentCNN/optimizations"
	"github.com/manningwu07/sentimentCNN/params"
	"github.com/manningwu07/sentimentCNN/utils"
)

// bestTracker remembers the lowest validation loss seen so far.
type bestTracker struct {
	best float64
	seen bool
}

// Improved reports whether loss strictly beats the best seen and records it.
func (b *bestTracker) Improved(loss float64) bool {
	if !b.seen || loss < b.best {
		b.best = loss
		b.seen = true
		return true
	}
	return false
}

// TrainOptions lets callers redirect checkpointing; tests inject recorders
// here. Zero values mean gob files under models/.
type TrainOptions struct {
	CheckpointPath string
	Save           func(m *cnn.TextCNN, path string) error
	Load           func(path string) (*cnn.TextCNN, error)
	Quiet          bool
}

// TrainReport is the per-epoch history plus the restored best model.
type TrainReport struct {
	TrainLoss, TrainAcc []float64
	ValLoss, ValAcc     []float64
	BestEpoch           int
	BestValLoss         float64
	UnfrozeAt           int // epoch at which the embedding unfroze, -1 if never
	Best                *cnn.TextCNN
}

// TrainSentiment runs the fixed-epoch training loop: shuffled mini-batches,
// binary cross-entropy with logits, AdamW steps gated by the embedding
// freeze schedule, and a checkpoint overwritten on every strict validation
// loss improvement. Any error aborts the run; there are no retries.
func TrainSentiment(m *cnn.TextCNN, train, val []IO.Encoded, cfg params.TrainingConfig, opts TrainOptions) (*TrainReport, error) {
	if opts.CheckpointPath == "" {
		opts.CheckpointPath = "models/best_model.gob"
	}
	if opts.Save == nil {
		opts.Save = func(m *cnn.TextCNN, path string) error {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			return cnn.SaveCheckpoint(m, path)
		}
	}
	if opts.Load == nil {
		opts.Load = cnn.LoadCheckpoint
	}

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	sched := cnn.NewFreezeSchedule(cfg.FreezeFor)
	m.EmbTrainable = sched.State() == cnn.Unfrozen

	embState := optimizations.NewAdamState(m.Emb)
	outWState := optimizations.NewAdamState(m.OutW)
	outBState := optimizations.NewAdamState(m.OutB)
	convWStates := make([]*optimizations.AdamState, len(m.Convs))
	convBStates := make([]*optimizations.AdamState, len(m.Convs))
	for i, c := range m.Convs {
		convWStates[i] = optimizations.NewAdamState(c.W)
		convBStates[i] = optimizations.NewAdamState(c.B)
	}

	report := &TrainReport{BestEpoch: -1, UnfrozeAt: -1}
	var tracker bestTracker

	for epoch := 0; epoch < cfg.MaxEpochs; epoch++ {
		if sched.Advance(epoch) {
			m.EmbTrainable = true
			report.UnfrozeAt = epoch
			if !opts.Quiet {
				fmt.Printf("Epoch %d: embedding matrix is now %s\n", epoch, sched.State())
			}
		}

		start := time.Now()
		IO.Shuffle(train, rng)

		var epochLoss float64
		var correct, total int
		for _, batch := range IO.Batches(train, cfg.BatchSize) {
			g := m.NewGrads()
			for _, ex := range batch {
				logit, cache := m.Forward(ex.IDs, rng)
				loss, dLogit := utils.BCEWithLogits(logit, ex.Label)
				m.Backward(cache, dLogit, g)
				epochLoss += loss
				if (logit >= 0) == (ex.Label == 1) {
					correct++
				}
				total++
			}
			g.Scale(1.0 / float64(len(batch)))
			g.ZeroReservedRows(m.PadID, m.UnkID)

			clipSet := []*mat.Dense{g.OutW, g.OutB}
			for i := range g.ConvW {
				clipSet = append(clipSet, g.ConvW[i], g.ConvB[i])
			}
			if m.EmbTrainable {
				clipSet = append(clipSet, g.Emb)
			}
			utils.ClipGrads(cfg.GradClip, clipSet...)

			optimizations.AdamUpdateInPlace(m.OutW, g.OutW, outWState,
				cfg.LR, cfg.AdamBeta1, cfg.AdamBeta2, cfg.AdamEps, cfg.WeightDecay)
			optimizations.AdamUpdateInPlace(m.OutB, g.OutB, outBState,
				cfg.LR, cfg.AdamBeta1, cfg.AdamBeta2, cfg.AdamEps, 0.0)
			for i := range m.Convs {
				optimizations.AdamUpdateInPlace(m.Convs[i].W, g.ConvW[i], convWStates[i],
					cfg.LR, cfg.AdamBeta1, cfg.AdamBeta2, cfg.AdamEps, cfg.WeightDecay)
				optimizations.AdamUpdateInPlace(m.Convs[i].B, g.ConvB[i], convBStates[i],
					cfg.LR, cfg.AdamBeta1, cfg.AdamBeta2, cfg.AdamEps, 0.0)
			}
			if m.EmbTrainable {
				optimizations.AdamUpdateInPlace(m.Emb, g.Emb, embState,
					cfg.EmbLR, cfg.AdamBeta1, cfg.AdamBeta2, cfg.AdamEps, 0.0)
			}
		}

		trainLoss := 0.0
		trainAcc := 0.0
		if total > 0 {
			trainLoss = epochLoss / float64(total)
			trainAcc = float64(correct) / float64(total)
		}
		valLoss, valAcc := evaluate(m, val)

		report.TrainLoss = append(report.TrainLoss, trainLoss)
		report.TrainAcc = append(report.TrainAcc, trainAcc)
		report.ValLoss = append(report.ValLoss, valLoss)
		report.ValAcc = append(report.ValAcc, valAcc)

		if !opts.Quiet {
			printEpoch(epoch, trainLoss, trainAcc, valLoss, valAcc, time.Since(start))
		}

		if tracker.Improved(valLoss) {
			if err := opts.Save(m, opts.CheckpointPath); err != nil {
				return nil, fmt.Errorf("checkpoint save at epoch %d: %w", epoch, err)
			}
			report.BestEpoch = epoch
			report.BestValLoss = valLoss
			if !opts.Quiet {
				fmt.Printf("Saved checkpoint at epoch %d (val loss %.4f)\n", epoch, valLoss)
			}
		}
	}

	if report.BestEpoch >= 0 {
		best, err := opts.Load(opts.CheckpointPath)
		if err != nil {
			return nil, fmt.Errorf("restoring best checkpoint: %w", err)
		}
		report.Best = best
	}
	return report, nil
}

// evaluate computes mean BCE loss and accuracy over data without dropout.
func evaluate(m *cnn.TextCNN, data []IO.Encoded) (loss, acc float64) {
	if len(data) == 0 {
		return 0, 0
	}
	correct := 0
	for _, ex := range data {
		logit, _ := m.Forward(ex.IDs, nil)
		l, _ := utils.BCEWithLogits(logit, ex.Label)
		loss += l
		if (logit >= 0) == (ex.Label == 1) {
			correct++
		}
	}
	return loss / float64(len(data)), float64(correct) / float64(len(data))
}
