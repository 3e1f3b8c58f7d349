package generator

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"planetd/internal/artefact"
	"planetd/pkg/types"
)

type Manager struct {
	mu      sync.RWMutex
	state   State
	lastErr string
	dir     string
	net     *network
	tok     *artefact.Tokenizer
	info    *types.ModelInfo
	closed  bool

	// Admission control
	genCh   chan struct{}
	queueCh chan struct{}
	maxWait time.Duration

	// Sampling RNG; rand.Rand is not safe for concurrent use
	rngMu sync.Mutex
	rng   *rand.Rand

	startTime  time.Time
	wordsTotal atomic.Uint64
}

// Load reads the model artefacts from dir and builds the network.
// On success the manager transitions to ready; on failure it records
// the error and stays unavailable so the daemon can serve degraded.
func (m *Manager) Load(dir string) error {
	arts, err := artefact.LoadDir(dir)
	if err != nil {
		m.setError(err)
		return err
	}
	net, err := newNetwork(arts)
	if err != nil {
		m.setError(err)
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
	m.net = net
	m.tok = arts.Tokenizer
	m.info = &types.ModelInfo{
		Name:         "planetrnn",
		Path:         dir,
		VocabSize:    arts.Config.VocabSize,
		EmbeddingDim: arts.Config.EmbeddingDim,
		HiddenSize:   arts.Config.HiddenSize,
		NumLayers:    arts.Config.NumLayers,
	}
	m.state = StateReady
	m.lastErr = ""
	return nil
}

func (m *Manager) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateError
	m.lastErr = err.Error()
}

// Generate samples n words and returns them in order.
func (m *Manager) Generate(ctx context.Context, n int, temperature float64) ([]string, error) {
	words := make([]string, 0, n)
	err := m.GenerateStream(ctx, n, temperature, func(w string) error {
		words = append(words, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// GenerateStream samples n words, calling emit for each as soon as it
// is available. Admission is bounded by the queue config; callers get
// a too-busy error instead of unbounded waiting.
func (m *Manager) GenerateStream(ctx context.Context, n int, temperature float64, emit func(string) error) error {
	if n < 1 {
		return ErrInvalidRequest("num_words must be at least 1")
	}
	if temperature < 0 || temperature > 10 {
		return ErrInvalidRequest("temperature must be between 0 and 10")
	}

	m.mu.RLock()
	ready := m.state == StateReady && !m.closed
	net, tok := m.net, m.tok
	m.mu.RUnlock()
	if !ready {
		return notLoadedError{}
	}

	release, err := m.beginGeneration(ctx)
	if err != nil {
		return err
	}
	defer release()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		word := sampleWord(net, tok, temperature, m.randFloat)
		if err := emit(word); err != nil {
			return err
		}
		m.wordsTotal.Add(1)
	}
	return nil
}

func (m *Manager) randFloat() float64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Float64()
}

// Info returns a copy of the loaded model's metadata, or nil when no
// model is loaded.
func (m *Manager) Info() *types.ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.info == nil {
		return nil
	}
	cp := *m.info
	return &cp
}

// Close marks the manager closed. Safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
