package utils

import (
	"context"
	"testing"

	"github.com/nagatech/daily_audit/models"
)

func TestRedisKey_UsesTypeName(t *testing.T) {
	if got := redisKey[models.Summary]("2024-05-01"); got != "Summary:2024-05-01" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRetrieveRedis_WithoutRedis_ReturnsNil(t *testing.T) {
	got, err := RetrieveRedis[models.Summary](context.Background(), "2024-05-01")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil without redis, got %v, %v", got, err)
	}
	if err := StoreRedis(context.Background(), "2024-05-01", models.Summary{}); err != nil {
		t.Fatalf("store without redis should be a no-op, got %v", err)
	}
}
