package peer

import (
	"testing"
	"time"
)

func TestBanScoreDecay(t *testing.T) {
	var b BanScore
	t0 := time.Unix(1_700_000_000, 0)
	b.Add(t0, 60)
	if s := b.Score(t0); s != 60 {
		t.Fatalf("expected 60, got %d", s)
	}
	t1 := t0.Add(10 * time.Minute)
	if s := b.Score(t1); s != 50 {
		t.Fatalf("expected 50, got %d", s)
	}
	t2 := t1.Add(100 * time.Minute)
	if s := b.Score(t2); s != 0 {
		t.Fatalf("expected 0, got %d", s)
	}
}

func TestBanScoreThresholds(t *testing.T) {
	var b BanScore
	now := time.Unix(1_700_000_000, 0)
	b.Add(now, ThrottleThreshold)
	if !b.ShouldThrottle(now) {
		t.Fatal("expected throttle at threshold")
	}
	if b.ShouldBan(now) {
		t.Fatal("did not expect ban below ban threshold")
	}
	b.Add(now, BanThreshold-ThrottleThreshold)
	if !b.ShouldBan(now) {
		t.Fatal("expected ban at threshold")
	}
}
