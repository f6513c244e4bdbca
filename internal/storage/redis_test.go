package storage

import (
	"context"
	"testing"
	"time"

	"github.com/pubglens/internal/config"
)

func TestDisabledClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name string
		cfg  config.RedisConfig
	}{
		{name: "no url", cfg: config.RedisConfig{}},
		{name: "bad url", cfg: config.RedisConfig{URL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRedisClient(ctx, tt.cfg)
			if r.Enabled() {
				t.Fatal("Expected disabled client")
			}
			if err := r.Set(ctx, "k", "v", time.Minute); err != nil {
				t.Errorf("Set on disabled client returned %v", err)
			}
			got, err := r.Get(ctx, "k")
			if err != nil || got != "" {
				t.Errorf("Expected miss, got %q, %v", got, err)
			}
			if err := r.Delete(ctx, "k"); err != nil {
				t.Errorf("Delete on disabled client returned %v", err)
			}
			if err := r.Ping(ctx); err != nil {
				t.Errorf("Ping on disabled client returned %v", err)
			}
			if err := r.Close(); err != nil {
				t.Errorf("Close on disabled client returned %v", err)
			}
		})
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	t.Parallel()

	var r *RedisClient
	if r.Enabled() {
		t.Error("Expected nil client to be disabled")
	}
}
