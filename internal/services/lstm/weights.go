package lstm

import (
	"fmt"

	"StockX/internal/domain/models"
)

// Weights exports the architecture and a copy of every parameter.
func (n *Network) Weights() models.ModelWeights {
	arch := n.arch
	arch.LSTMUnits = append([]int(nil), n.arch.LSTMUnits...)
	arch.DenseUnits = append([]int(nil), n.arch.DenseUnits...)

	out := models.ModelWeights{Architecture: arch, Tensors: make([]models.Tensor, 0, len(n.all))}
	for _, p := range n.all {
		out.Tensors = append(out.Tensors, models.Tensor{
			Name: p.name,
			Rows: p.rows,
			Cols: p.cols,
			Data: append([]float64(nil), p.value...),
		})
	}
	return out
}

// FromWeights rebuilds a network from exported weights. Any mismatch between
// the architecture and the tensors is reported as a corrupt artifact.
func FromWeights(w models.ModelWeights) (*Network, error) {
	n, err := build(w.Architecture)
	if err != nil {
		return nil, models.CorruptArtifact("", err)
	}
	byName := make(map[string]models.Tensor, len(w.Tensors))
	for _, t := range w.Tensors {
		byName[t.Name] = t
	}
	if len(byName) != len(n.all) {
		return nil, models.CorruptArtifact("", fmt.Errorf("expected %d tensors, found %d", len(n.all), len(byName)))
	}
	for _, p := range n.all {
		t, ok := byName[p.name]
		if !ok {
			return nil, models.CorruptArtifact("", fmt.Errorf("missing tensor %s", p.name))
		}
		if t.Rows != p.rows || t.Cols != p.cols || len(t.Data) != len(p.value) {
			return nil, models.CorruptArtifact("", fmt.Errorf("tensor %s has shape %dx%d (%d values), want %dx%d",
				p.name, t.Rows, t.Cols, len(t.Data), p.rows, p.cols))
		}
		copy(p.value, t.Data)
	}
	return n, nil
}
