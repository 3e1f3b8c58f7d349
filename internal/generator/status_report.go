package generator

import (
	"time"

	"planetd/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Err: m.lastErr}
}

// Ready reports whether the model is loaded and accepting work.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && !m.closed
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		State:          string(m.state),
		QueueLen:       len(m.queueCh),
		Inflight:       len(m.genCh),
		MaxQueueDepth:  cap(m.queueCh),
		WordsTotal:     m.wordsTotal.Load(),
		LastError:      m.lastErr,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if m.info != nil {
		cp := *m.info
		resp.Model = &cp
	}
	return resp
}
