package generator

import "time"

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxParallel  = 2
	defaultMaxQueue     = 8
	defaultQueueTimeout = 2 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// MaxParallel bounds concurrent sampling loops.
	MaxParallel int
	// MaxQueue bounds admitted requests (queued plus in-flight).
	MaxQueue int
	// QueueTimeout bounds how long a request may wait for admission.
	QueueTimeout time.Duration
	// Seed fixes the sampling RNG; 0 seeds from the clock.
	Seed uint64
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = defaultMaxParallel
	}
	if cfg.MaxQueue <= 0 {
		cfg.MaxQueue = defaultMaxQueue
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaultQueueTimeout
	}
	m := &Manager{
		state:   StateLoading,
		genCh:   make(chan struct{}, cfg.MaxParallel),
		queueCh: make(chan struct{}, cfg.MaxQueue),
		maxWait: cfg.QueueTimeout,
		rng:     newRand(cfg.Seed),
	}
	m.startTime = time.Now()
	return m
}

// New constructs a Manager with package defaults.
func New() *Manager {
	return NewWithConfig(ManagerConfig{})
}
