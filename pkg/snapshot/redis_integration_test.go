//go:build integration

package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/bankbridge/internal/dataset"
)

// setupRedisContainer starts a Redis container for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		client.Close()
		redisContainer.Terminate(ctx)
	})

	return client
}

func TestIntegration_RedisSourceRoundTrip(t *testing.T) {
	client := setupRedisContainer(t)
	ctx := context.Background()

	store, err := Parse(dataset.StaticBanks())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	src := NewRedisSource(client, "")
	if err := src.Publish(ctx, store); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	loaded, err := LoadFrom(ctx, src)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Len() != store.Len() {
		t.Fatalf("Len() = %d, want %d", loaded.Len(), store.Len())
	}

	want := store.All()
	for i, got := range loaded.All() {
		if got.ID != want[i].ID {
			t.Errorf("record %d ID = %q, want %q", i, got.ID, want[i].ID)
		}
	}
}

func TestIntegration_RedisSourceMissingKey(t *testing.T) {
	client := setupRedisContainer(t)

	src := NewRedisSource(client, "bankbridge:test:missing")
	_, err := src.Load(context.Background())
	if !errors.Is(err, ErrSnapshotMissing) {
		t.Errorf("Load error = %v, want ErrSnapshotMissing", err)
	}
}
