package generator

import (
	"fmt"
	"math"

	"planetd/internal/artefact"
)

// network is the character-level GRU language model rebuilt from the
// artefact weights. Tensors keep the exported row-major layout:
// embedding.weight [V,E], gru.weight_ih_l{i} [3H,in], gru.weight_hh_l{i}
// [3H,H], biases [3H], fc.weight [V,H], fc.bias [V]. Gate rows are
// ordered reset, update, candidate.
type network struct {
	cfg    artefact.ModelConfig
	embed  []float32
	layers []gruLayer
	fcW    []float32
	fcB    []float32
}

type gruLayer struct {
	in  int
	wih []float32
	whh []float32
	bih []float32
	bhh []float32
}

func newNetwork(a *artefact.Artefacts) (*network, error) {
	cfg := a.Config
	n := &network{cfg: cfg}

	embed, err := tensorWithShape(a.Weights, "embedding.weight", cfg.VocabSize, cfg.EmbeddingDim)
	if err != nil {
		return nil, err
	}
	n.embed = embed

	n.layers = make([]gruLayer, cfg.NumLayers)
	for i := 0; i < cfg.NumLayers; i++ {
		in := cfg.EmbeddingDim
		if i > 0 {
			in = cfg.HiddenSize
		}
		wih, err := tensorWithShape(a.Weights, fmt.Sprintf("gru.weight_ih_l%d", i), 3*cfg.HiddenSize, in)
		if err != nil {
			return nil, err
		}
		whh, err := tensorWithShape(a.Weights, fmt.Sprintf("gru.weight_hh_l%d", i), 3*cfg.HiddenSize, cfg.HiddenSize)
		if err != nil {
			return nil, err
		}
		bih, err := tensorWithShape(a.Weights, fmt.Sprintf("gru.bias_ih_l%d", i), 3*cfg.HiddenSize)
		if err != nil {
			return nil, err
		}
		bhh, err := tensorWithShape(a.Weights, fmt.Sprintf("gru.bias_hh_l%d", i), 3*cfg.HiddenSize)
		if err != nil {
			return nil, err
		}
		n.layers[i] = gruLayer{in: in, wih: wih, whh: whh, bih: bih, bhh: bhh}
	}

	fcW, err := tensorWithShape(a.Weights, "fc.weight", cfg.VocabSize, cfg.HiddenSize)
	if err != nil {
		return nil, err
	}
	fcB, err := tensorWithShape(a.Weights, "fc.bias", cfg.VocabSize)
	if err != nil {
		return nil, err
	}
	n.fcW, n.fcB = fcW, fcB
	return n, nil
}

func tensorWithShape(w *artefact.Weights, name string, dims ...int) ([]float32, error) {
	t, ok := w.Get(name)
	if !ok {
		return nil, fmt.Errorf("weights missing tensor %q", name)
	}
	if len(t.Shape) != len(dims) {
		return nil, fmt.Errorf("tensor %q has %d dimensions, want %d", name, len(t.Shape), len(dims))
	}
	for i, d := range dims {
		if t.Shape[i] != d {
			return nil, fmt.Errorf("tensor %q has shape %v, want %v", name, t.Shape, dims)
		}
	}
	return t.Data, nil
}

// newHidden allocates a zeroed hidden state, one vector per layer.
func (n *network) newHidden() [][]float32 {
	h := make([][]float32, len(n.layers))
	for i := range h {
		h[i] = make([]float32, n.cfg.HiddenSize)
	}
	return h
}

// step feeds one token through the network, updating h in place, and
// returns the output logits.
func (n *network) step(h [][]float32, tokenID int) []float32 {
	e := n.cfg.EmbeddingDim
	x := n.embed[tokenID*e : (tokenID+1)*e]
	for i := range n.layers {
		x = n.layers[i].step(h[i], x)
	}
	v, hs := n.cfg.VocabSize, n.cfg.HiddenSize
	logits := make([]float32, v)
	for row := 0; row < v; row++ {
		logits[row] = n.fcB[row] + dot(n.fcW[row*hs:(row+1)*hs], x)
	}
	return logits
}

// step runs one GRU cell update: r and z gates are sigmoids, the
// candidate is a tanh with the reset gate applied to the recurrent
// term, h' = (1-z)*cand + z*h. h is updated in place and returned.
func (l *gruLayer) step(h, x []float32) []float32 {
	hs := len(h)
	next := make([]float32, hs)
	for g := 0; g < hs; g++ {
		r := sigmoid(dot(l.wih[g*l.in:(g+1)*l.in], x) + l.bih[g] +
			dot(l.whh[g*hs:(g+1)*hs], h) + l.bhh[g])
		z := sigmoid(dot(l.wih[(hs+g)*l.in:(hs+g+1)*l.in], x) + l.bih[hs+g] +
			dot(l.whh[(hs+g)*hs:(hs+g+1)*hs], h) + l.bhh[hs+g])
		cand := tanh(dot(l.wih[(2*hs+g)*l.in:(2*hs+g+1)*l.in], x) + l.bih[2*hs+g] +
			r*(dot(l.whh[(2*hs+g)*hs:(2*hs+g+1)*hs], h)+l.bhh[2*hs+g]))
		next[g] = (1-z)*cand + z*h[g]
	}
	copy(h, next)
	return h
}

func dot(a, b []float32) float32 {
	var s float32
	for i, av := range a {
		s += av * b[i]
	}
	return s
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
