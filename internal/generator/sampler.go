package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"planetd/internal/artefact"
)

// maxWordLength caps generated words at 20 characters, matching the
// length the model was trained on.
const maxWordLength = 20

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// sampleWord autoregressively samples one word from the network. The
// sequence starts from BOS with a fresh hidden state; generation stops
// at EOS or once maxWordLength characters have been emitted. Special
// tokens other than EOS are masked out so they can never be sampled.
// temperature 0 selects the argmax at every step.
func sampleWord(net *network, tok *artefact.Tokenizer, temperature float64, randF func() float64) string {
	h := net.newHidden()
	token := tok.BOS()
	var ids []int
	for len(ids) < maxWordLength {
		logits := net.step(h, token)
		for id := range logits {
			if tok.IsSpecial(id) && id != tok.EOS() {
				logits[id] = float32(math.Inf(-1))
			}
		}
		var next int
		if temperature == 0 {
			next = argmax(logits)
		} else {
			next = sampleLogits(logits, temperature, randF)
		}
		if next == tok.EOS() {
			break
		}
		ids = append(ids, next)
		token = next
	}
	return tok.Decode(ids)
}

func argmax(logits []float32) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}

// sampleLogits draws an index from the temperature-scaled softmax of
// logits. The max is subtracted before exponentiation for stability.
func sampleLogits(logits []float32, temperature float64, randF func() float64) int {
	max := math.Inf(-1)
	for _, v := range logits {
		if float64(v) > max {
			max = float64(v)
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		p := math.Exp((float64(v) - max) / temperature)
		probs[i] = p
		sum += p
	}
	r := randF() * sum
	for i, p := range probs {
		r -= p
		if r < 0 {
			return i
		}
	}
	return argmax(logits)
}
