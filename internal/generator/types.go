package generator

// State represents the lifecycle state of the manager.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State State
	Err   string
}
