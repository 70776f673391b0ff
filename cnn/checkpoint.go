package cnn

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// checkpointData is the gob snapshot of every model parameter, matrices
// flattened to raw float slices plus dims.
type checkpointData struct {
	EmbR, EmbC   int
	EmbData      []float64
	EmbTrainable bool

	Widths []int
	ConvW  [][]float64
	ConvB  [][]float64
	F      int

	OutW []float64
	OutB float64

	Dropout      float64
	PadID, UnkID int
}

func flatten(m *mat.Dense) []float64 {
	raw := mat.DenseCopyOf(m).RawMatrix()
	return append([]float64(nil), raw.Data...)
}

// SaveCheckpoint overwrites path with a snapshot of all model parameters.
// The write goes through a temp file and rename so a crash mid-write never
// clobbers the previous best.
func SaveCheckpoint(m *TextCNN, path string) error {
	data := checkpointData{
		EmbTrainable: m.EmbTrainable,
		Widths:       make([]int, len(m.Convs)),
		ConvW:        make([][]float64, len(m.Convs)),
		ConvB:        make([][]float64, len(m.Convs)),
		F:            m.numFilters(),
		OutW:         flatten(m.OutW),
		OutB:         m.OutB.At(0, 0),
		Dropout:      m.Dropout,
		PadID:        m.PadID,
		UnkID:        m.UnkID,
	}
	data.EmbR, data.EmbC = m.Emb.Dims()
	data.EmbData = flatten(m.Emb)
	for i, c := range m.Convs {
		data.Widths[i] = c.Width
		data.ConvW[i] = flatten(c.W)
		data.ConvB[i] = flatten(c.B)
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(data); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadCheckpoint rebuilds a TextCNN from a SaveCheckpoint snapshot.
func LoadCheckpoint(path string) (*TextCNN, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := checkpointData{}
	dec := gob.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if len(data.Widths) == 0 || data.F == 0 || data.EmbR == 0 || data.EmbC == 0 {
		return nil, fmt.Errorf("checkpoint %s: empty or truncated snapshot", path)
	}
	if len(data.EmbData) != data.EmbR*data.EmbC {
		return nil, fmt.Errorf("checkpoint %s: embedding data length %d != %dx%d", path, len(data.EmbData), data.EmbR, data.EmbC)
	}
	if len(data.OutW) != len(data.Widths)*data.F {
		return nil, fmt.Errorf("checkpoint %s: output weight length %d != %d", path, len(data.OutW), len(data.Widths)*data.F)
	}
	if len(data.ConvW) != len(data.Widths) || len(data.ConvB) != len(data.Widths) {
		return nil, fmt.Errorf("checkpoint %s: conv bank count mismatch", path)
	}

	m := &TextCNN{
		Emb:          mat.NewDense(data.EmbR, data.EmbC, data.EmbData),
		EmbTrainable: data.EmbTrainable,
		Convs:        make([]ConvLayer, len(data.Widths)),
		OutW:         mat.NewDense(1, len(data.OutW), data.OutW),
		OutB:         mat.NewDense(1, 1, []float64{data.OutB}),
		Dropout:      data.Dropout,
		PadID:        data.PadID,
		UnkID:        data.UnkID,
	}
	for i, w := range data.Widths {
		in := w * data.EmbC
		if len(data.ConvW[i]) != data.F*in || len(data.ConvB[i]) != data.F {
			return nil, fmt.Errorf("checkpoint %s: conv %d shape mismatch", path, i)
		}
		m.Convs[i] = ConvLayer{
			Width: w,
			W:     mat.NewDense(data.F, in, data.ConvW[i]),
			B:     mat.NewDense(data.F, 1, data.ConvB[i]),
		}
	}
	if err := m.CheckShapes(); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	return m, nil
}
