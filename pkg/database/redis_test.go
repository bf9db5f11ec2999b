package database

import (
	"context"
	"testing"

	"github.com/diagnosis/stayvista-server/pkg/config"
)

func TestConnectRedis_Disabled(t *testing.T) {
	client, err := ConnectRedis(context.Background(), config.RedisConfig{})
	if err != nil || client != nil {
		t.Fatalf("expected nil client without url, got %v (%v)", client, err)
	}
}

func TestConnectRedis_BadURL(t *testing.T) {
	if _, err := ConnectRedis(context.Background(), config.RedisConfig{URL: "http://not-redis"}); err == nil {
		t.Fatal("expected parse error")
	}
}
