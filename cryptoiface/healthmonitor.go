package cryptoiface

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// BackendState is the operating state of the node with respect to its
// signing backend (an HSM, a remote signer, or any Verifier/KeyWrap
// implementation that can become unreachable).
type BackendState int32

const (
	BackendStateNormal   BackendState = 0 // backend reachable, signing works
	BackendStateReadOnly BackendState = 1 // backend unreachable, signing disabled, verification OK
	BackendStateFailed   BackendState = 2 // timeout exceeded, node must shut down
)

func (s BackendState) String() string {
	switch s {
	case BackendStateNormal:
		return "NORMAL"
	case BackendStateReadOnly:
		return "READ_ONLY"
	case BackendStateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// HealthMonitorConfig tunes the failover state machine.
type HealthMonitorConfig struct {
	HealthInterval  time.Duration
	FailThreshold   int
	FailoverTimeout time.Duration // 0 disables the FAILED transition
}

// DefaultHealthMonitorConfig returns reasonable defaults for periodic
// backend health checks.
func DefaultHealthMonitorConfig() HealthMonitorConfig {
	return HealthMonitorConfig{
		HealthInterval:  10 * time.Second,
		FailThreshold:   3,
		FailoverTimeout: 5 * time.Minute,
	}
}

// HealthCheckFn probes the signing backend for reachability.
type HealthCheckFn func() error

// HealthMonitor runs the health check loop and drives BackendState.
type HealthMonitor struct {
	cfg   HealthMonitorConfig
	check HealthCheckFn

	state         atomic.Int32
	mu            sync.Mutex
	failCount     int
	readOnlySince time.Time

	onFailed func() // called once when entering FAILED, to trigger graceful shutdown
	logger   *slog.Logger
}

// NewHealthMonitor constructs a HealthMonitor. onFailed may be nil.
func NewHealthMonitor(cfg HealthMonitorConfig, check HealthCheckFn, onFailed func(), logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	m := &HealthMonitor{cfg: cfg, check: check, onFailed: onFailed, logger: logger}
	m.state.Store(int32(BackendStateNormal))
	return m
}

// State returns the current backend state.
func (m *HealthMonitor) State() BackendState {
	return BackendState(m.state.Load())
}

// CanSign reports whether the backend is healthy enough to sign.
func (m *HealthMonitor) CanSign() bool {
	return m.State() == BackendStateNormal
}

// CheckOnce runs a single health probe synchronously and updates the
// backend state accordingly. Useful for one-shot CLI tools that must
// gate a sensitive operation on backend health without running the
// periodic Run loop.
func (m *HealthMonitor) CheckOnce() {
	m.tick()
}

// Run starts the health check loop, blocking until ctx is canceled.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *HealthMonitor) tick() {
	err := m.check()
	m.mu.Lock()
	defer m.mu.Unlock()

	current := BackendState(m.state.Load())

	if err == nil {
		if current != BackendStateNormal {
			m.logger.Info("signing backend recovered", "from", current.String(), "to", "NORMAL")
		}
		m.failCount = 0
		m.state.Store(int32(BackendStateNormal))
		return
	}

	m.failCount++
	m.logger.Warn("signing backend health check failed", "fail_count", m.failCount, "threshold", m.cfg.FailThreshold, "error", err.Error())

	if current == BackendStateNormal && m.failCount >= m.cfg.FailThreshold {
		m.readOnlySince = time.Now()
		m.state.Store(int32(BackendStateReadOnly))
		m.logger.Warn("signing backend unreachable, entering read-only mode", "fail_count", m.failCount)
		return
	}

	if current == BackendStateReadOnly && m.cfg.FailoverTimeout > 0 {
		if time.Since(m.readOnlySince) >= m.cfg.FailoverTimeout {
			m.state.Store(int32(BackendStateFailed))
			m.logger.Error("signing backend timeout exceeded, node entering failed state", "timeout", m.cfg.FailoverTimeout.String())
			if m.onFailed != nil {
				go m.onFailed()
			}
		}
	}
}
