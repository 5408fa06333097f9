package lstm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"StockX/internal/domain/models"
)

// Config describes a network to build from scratch.
type Config struct {
	Architecture models.Architecture
	LearningRate float64
	Seed         int64
}

// DefaultArchitecture is two stacked LSTM(50) layers over a 60-step
// univariate window, followed by Dense(25) and the Dense(1) output.
func DefaultArchitecture() models.Architecture {
	return models.Architecture{
		WindowSize: 60,
		Features:   1,
		LSTMUnits:  []int{50, 50},
		DenseUnits: []int{25},
	}
}

// FitOptions control a training run.
type FitOptions struct {
	Epochs             int
	BatchSize          int
	ValidationFraction float64
	Shuffle            bool
	OnEpoch            func(models.EpochStats)
}

// History is the per-epoch record of a training run.
type History struct {
	Epochs          []models.EpochStats
	TrainSamples    int
	ValidateSamples int
}

// Last returns the stats of the final epoch.
func (h *History) Last() models.EpochStats {
	if h == nil || len(h.Epochs) == 0 {
		return models.EpochStats{}
	}
	return h.Epochs[len(h.Epochs)-1]
}

var ErrDiverged = errors.New("training diverged: loss is not finite")

// Network is a stacked LSTM regressor mapping a window to one value.
// Predict does not mutate the network and may be called concurrently;
// Fit must not run concurrently with anything else on the same Network.
type Network struct {
	arch  models.Architecture
	lr    float64
	rng   *rand.Rand
	lstms []*lstmLayer
	dense []*denseLayer
	all   []*param
}

// New builds a network with freshly initialized weights.
func New(cfg Config) (*Network, error) {
	n, err := build(cfg.Architecture)
	if err != nil {
		return nil, err
	}
	n.lr = cfg.LearningRate
	if n.lr <= 0 {
		n.lr = 0.001
	}
	n.rng = rand.New(rand.NewSource(cfg.Seed))
	for _, l := range n.lstms {
		l.init(n.rng)
	}
	for _, l := range n.dense {
		l.init(n.rng)
	}
	return n, nil
}

func validateArchitecture(a models.Architecture) error {
	if a.WindowSize <= 0 || a.Features <= 0 {
		return fmt.Errorf("invalid input shape %dx%d", a.WindowSize, a.Features)
	}
	if len(a.LSTMUnits) == 0 {
		return errors.New("at least one LSTM layer is required")
	}
	for _, u := range append(append([]int{}, a.LSTMUnits...), a.DenseUnits...) {
		if u <= 0 {
			return fmt.Errorf("invalid layer size %d", u)
		}
	}
	return nil
}

func build(a models.Architecture) (*Network, error) {
	if err := validateArchitecture(a); err != nil {
		return nil, err
	}
	n := &Network{arch: a, lr: 0.001, rng: rand.New(rand.NewSource(0))}
	in := a.Features
	for i, units := range a.LSTMUnits {
		l := newLSTMLayer(fmt.Sprintf("lstm_%d", i), in, units)
		n.lstms = append(n.lstms, l)
		n.all = append(n.all, l.params()...)
		in = units
	}
	sizes := append(append([]int{}, a.DenseUnits...), 1)
	for i, out := range sizes {
		l := newDenseLayer(fmt.Sprintf("dense_%d", i), in, out)
		n.dense = append(n.dense, l)
		n.all = append(n.all, l.params()...)
		in = out
	}
	return n, nil
}

func (n *Network) Architecture() models.Architecture { return n.arch }

// ParamCount returns the number of trainable scalars.
func (n *Network) ParamCount() int {
	total := 0
	for _, p := range n.all {
		total += len(p.value)
	}
	return total
}

type passCache struct {
	steps   [][]lstmStep
	denseIn []*mat.VecDense
}

func (n *Network) inputs(window []float64) ([]*mat.VecDense, error) {
	want := n.arch.WindowSize * n.arch.Features
	if len(window) != want {
		return nil, fmt.Errorf("window has %d values, want %d", len(window), want)
	}
	f := n.arch.Features
	xs := make([]*mat.VecDense, n.arch.WindowSize)
	for t := range xs {
		xs[t] = mat.NewVecDense(f, append([]float64(nil), window[t*f:(t+1)*f]...))
	}
	return xs, nil
}

func (n *Network) forward(window []float64) (float64, *passCache, error) {
	seq, err := n.inputs(window)
	if err != nil {
		return 0, nil, err
	}
	cache := &passCache{}
	for _, l := range n.lstms {
		steps, err := l.forward(seq)
		if err != nil {
			return 0, nil, err
		}
		cache.steps = append(cache.steps, steps)
		seq = make([]*mat.VecDense, len(steps))
		for t := range steps {
			seq[t] = steps[t].h
		}
	}
	x := seq[len(seq)-1]
	for _, l := range n.dense {
		cache.denseIn = append(cache.denseIn, x)
		x = l.forward(x)
	}
	return x.AtVec(0), cache, nil
}

// backward accumulates gradients for one sample given dL/dŷ.
func (n *Network) backward(cache *passCache, dy float64) {
	d := mat.NewVecDense(1, []float64{dy})
	for i := len(n.dense) - 1; i >= 0; i-- {
		d = n.dense[i].backward(cache.denseIn[i], d)
	}
	last := cache.steps[len(cache.steps)-1]
	dh := make([]*mat.VecDense, len(last))
	dh[len(dh)-1] = d
	for i := len(n.lstms) - 1; i >= 0; i-- {
		dh = n.lstms[i].backward(cache.steps[i], dh)
	}
}

func (n *Network) zeroGrad() {
	for _, p := range n.all {
		p.zeroGrad()
	}
}

// Predict runs a forward pass over one normalized window.
func (n *Network) Predict(window []float64) (float64, error) {
	y, _, err := n.forward(window)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("non-finite model output %v", y)
	}
	return y, nil
}

// ValidationSplit returns how many of n time-ordered samples are used for
// training. The remaining floor(n*fraction) most recent samples are held out
// for validation; at least one training sample is always kept.
func ValidationSplit(n int, fraction float64) int {
	if fraction <= 0 || n <= 1 {
		return n
	}
	val := int(math.Floor(float64(n) * fraction))
	if val >= n {
		val = n - 1
	}
	return n - val
}

// Fit trains the network with MSE loss and Adam. The validation set is the
// chronological tail of the samples, so no future window leaks into
// training. Batches are shuffled only within the training prefix.
func (n *Network) Fit(ctx context.Context, windows [][]float64, targets []float64, opts FitOptions) (*History, error) {
	if len(windows) == 0 {
		return nil, errors.New("no training samples")
	}
	if len(windows) != len(targets) {
		return nil, fmt.Errorf("%d windows but %d targets", len(windows), len(targets))
	}
	if opts.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive, got %d", opts.Epochs)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}

	trainN := ValidationSplit(len(windows), opts.ValidationFraction)
	hist := &History{TrainSamples: trainN, ValidateSamples: len(windows) - trainN}

	order := make([]int, trainN)
	for i := range order {
		order[i] = i
	}
	opt := newAdam(n.lr, n.all)

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if opts.Shuffle {
			n.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		var total float64
		for start := 0; start < trainN; start += opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return hist, err
			}
			batch := order[start:min(start+opts.BatchSize, trainN)]
			n.zeroGrad()
			scale := 2 / float64(len(batch))
			for _, idx := range batch {
				y, cache, err := n.forward(windows[idx])
				if err != nil {
					return hist, fmt.Errorf("sample %d: %w", idx, err)
				}
				diff := y - targets[idx]
				total += diff * diff
				n.backward(cache, scale*diff)
			}
			opt.step(n.all)
		}

		stats := models.EpochStats{Epoch: epoch, Loss: total / float64(trainN)}
		if trainN < len(windows) {
			vl, err := n.evaluate(windows[trainN:], targets[trainN:])
			if err != nil {
				return hist, err
			}
			stats.ValLoss = vl
		}
		if math.IsNaN(stats.Loss) || math.IsInf(stats.Loss, 0) {
			return hist, ErrDiverged
		}
		hist.Epochs = append(hist.Epochs, stats)
		if opts.OnEpoch != nil {
			opts.OnEpoch(stats)
		}
	}
	return hist, nil
}

// evaluate returns the MSE over the given samples.
func (n *Network) evaluate(windows [][]float64, targets []float64) (float64, error) {
	var total float64
	for i, w := range windows {
		y, _, err := n.forward(w)
		if err != nil {
			return 0, err
		}
		d := y - targets[i]
		total += d * d
	}
	return total / float64(len(windows)), nil
}
