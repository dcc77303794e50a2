package server

import (
	"testing"
	"time"
)

func TestFlowRegistryEvictsIdleFlows(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	now := start
	registry := newFlowRegistry(10 * time.Minute)
	registry.now = func() time.Time { return now }

	idle := registry.get("idle")
	idle.setAlert("pending")

	now = start.Add(6 * time.Minute)
	registry.get("active")
	if registry.len() != 2 {
		t.Fatalf("expected both flows within the timeout, got %d", registry.len())
	}

	now = start.Add(12 * time.Minute)
	registry.get("active")
	if registry.len() != 1 {
		t.Fatalf("expected the idle flow to be evicted, got %d flows", registry.len())
	}

	if again := registry.get("idle"); again == idle || again.takeAlert() != "" {
		t.Fatalf("expected a fresh flow after eviction")
	}
}

func TestFlowRegistryWithoutTimeoutKeepsFlows(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	registry := newFlowRegistry(0)
	registry.now = func() time.Time { return now }

	registry.get("a")
	now = now.Add(365 * 24 * time.Hour)
	registry.get("b")
	if registry.len() != 2 {
		t.Fatalf("expected flows to be kept, got %d", registry.len())
	}

	registry.drop("a")
	if registry.len() != 1 {
		t.Fatalf("expected drop to remove the flow, got %d", registry.len())
	}
}
