package cnn

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckpointRoundTrip(t *testing.T) {
	m, _ := testModel()
	m.EmbTrainable = true
	path := filepath.Join(t.TempDir(), "model.gob")

	if err := SaveCheckpoint(m, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}

	if !mat.Equal(got.Emb, m.Emb) {
		t.Fatal("embedding matrix changed in round trip")
	}
	if got.EmbTrainable != m.EmbTrainable {
		t.Fatal("trainability flag lost")
	}
	if len(got.Convs) != len(m.Convs) {
		t.Fatalf("conv banks = %d, want %d", len(got.Convs), len(m.Convs))
	}
	for i := range m.Convs {
		if got.Convs[i].Width != m.Convs[i].Width {
			t.Fatalf("conv %d width changed", i)
		}
		if !mat.Equal(got.Convs[i].W, m.Convs[i].W) || !mat.Equal(got.Convs[i].B, m.Convs[i].B) {
			t.Fatalf("conv %d parameters changed", i)
		}
	}
	if !mat.Equal(got.OutW, m.OutW) || !mat.Equal(got.OutB, m.OutB) {
		t.Fatal("output layer changed")
	}
	if got.Dropout != m.Dropout || got.PadID != m.PadID || got.UnkID != m.UnkID {
		t.Fatal("hyperparameters changed")
	}

	// identical scores on an arbitrary sequence
	ids := []int{2, 3, 4}
	if a, b := m.Score(ids), got.Score(ids); a != b {
		t.Fatalf("scores differ after reload: %v vs %v", a, b)
	}
}

func TestCheckpointOverwrite(t *testing.T) {
	m, _ := testModel()
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := SaveCheckpoint(m, path); err != nil {
		t.Fatal(err)
	}
	m.OutB.Set(0, 0, 99)
	if err := SaveCheckpoint(m, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.OutB.At(0, 0) != 99 {
		t.Fatal("second save did not overwrite the first")
	}
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	if _, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Fatal("expected error for missing checkpoint")
	}
}

func TestLoadCheckpointRejectsBadShapes(t *testing.T) {
	m, _ := testModel()
	base := checkpointData{
		EmbTrainable: m.EmbTrainable,
		Widths:       []int{2, 3},
		ConvW:        [][]float64{flatten(m.Convs[0].W), flatten(m.Convs[1].W)},
		ConvB:        [][]float64{flatten(m.Convs[0].B), flatten(m.Convs[1].B)},
		F:            2,
		OutW:         flatten(m.OutW),
		OutB:         m.OutB.At(0, 0),
	}
	base.EmbR, base.EmbC = m.Emb.Dims()
	base.EmbData = flatten(m.Emb)

	cases := []struct {
		name   string
		mangle func(*checkpointData)
	}{
		{"truncated embedding data", func(d *checkpointData) { d.EmbData = d.EmbData[:len(d.EmbData)-1] }},
		{"embedding dims too large", func(d *checkpointData) { d.EmbR++ }},
		{"short output weights", func(d *checkpointData) { d.OutW = d.OutW[:1] }},
		{"missing conv bank", func(d *checkpointData) { d.ConvW = d.ConvW[:1] }},
		{"truncated conv weights", func(d *checkpointData) { d.ConvW[0] = d.ConvW[0][:2] }},
	}
	for _, tc := range cases {
		data := base
		data.EmbData = append([]float64(nil), base.EmbData...)
		data.OutW = append([]float64(nil), base.OutW...)
		data.ConvW = append([][]float64(nil), base.ConvW...)
		data.ConvB = append([][]float64(nil), base.ConvB...)
		tc.mangle(&data)

		path := filepath.Join(t.TempDir(), "bad.gob")
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(data); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadCheckpoint(path); err == nil {
			t.Fatalf("%s: expected error, got a model", tc.name)
		}
	}
}
