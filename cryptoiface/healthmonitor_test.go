package cryptoiface

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestHealthMonitorEntersReadOnlyAfterThreshold(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	cfg := HealthMonitorConfig{HealthInterval: 5 * time.Millisecond, FailThreshold: 2, FailoverTimeout: 0}
	var failedCalled atomic.Bool
	m := NewHealthMonitor(cfg, func() error {
		if failing.Load() {
			return errors.New("unreachable")
		}
		return nil
	}, func() { failedCalled.Store(true) }, nil)

	if !m.CanSign() {
		t.Fatal("monitor should start healthy")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	go m.Run(ctx)
	<-ctx.Done()

	if m.State() != BackendStateReadOnly {
		t.Fatalf("state=%v, want READ_ONLY", m.State())
	}
	if m.CanSign() {
		t.Fatal("read-only backend should not report CanSign")
	}
	if failedCalled.Load() {
		t.Fatal("onFailed should not fire with FailoverTimeout disabled")
	}
}

func TestHealthMonitorRecoversToNormal(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	cfg := HealthMonitorConfig{HealthInterval: 5 * time.Millisecond, FailThreshold: 1, FailoverTimeout: 0}
	m := NewHealthMonitor(cfg, func() error {
		if failing.Load() {
			return errors.New("unreachable")
		}
		return nil
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	time.Sleep(20 * time.Millisecond)
	if m.State() != BackendStateReadOnly {
		t.Fatalf("state=%v, want READ_ONLY before recovery", m.State())
	}

	failing.Store(false)
	time.Sleep(20 * time.Millisecond)
	cancel()

	if m.State() != BackendStateNormal {
		t.Fatalf("state=%v, want NORMAL after recovery", m.State())
	}
}

func TestHealthMonitorCheckOnceGatesCanSign(t *testing.T) {
	cfg := HealthMonitorConfig{HealthInterval: time.Hour, FailThreshold: 1, FailoverTimeout: 0}
	m := NewHealthMonitor(cfg, func() error { return errors.New("unreachable") }, nil, nil)

	if !m.CanSign() {
		t.Fatal("monitor should start healthy before any check runs")
	}
	m.CheckOnce()
	if m.CanSign() {
		t.Fatal("expected CanSign to be false after a single failed CheckOnce")
	}
	if m.State() != BackendStateReadOnly {
		t.Fatalf("state=%v, want READ_ONLY", m.State())
	}
}
