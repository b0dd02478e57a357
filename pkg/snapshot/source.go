package snapshot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/bankbridge/internal/dataset"
)

// Source loads the snapshot dataset.
type Source interface {
	// Load reads and decodes the dataset.
	Load(ctx context.Context) (*Store, error)

	// Name describes the source for logs.
	Name() string
}

// FileSource reads the dataset from a file.
type FileSource struct {
	Path string
}

// Load implements Source.
func (f FileSource) Load(_ context.Context) (*Store, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return Parse(data)
}

// Name implements Source.
func (f FileSource) Name() string {
	return "file:" + f.Path
}

// EmbeddedSource serves the default dataset compiled into the binary.
type EmbeddedSource struct{}

// Load implements Source.
func (EmbeddedSource) Load(_ context.Context) (*Store, error) {
	return Parse(dataset.StaticBanks())
}

// Name implements Source.
func (EmbeddedSource) Name() string {
	return "embedded"
}

// LoadFrom loads a store from the source and logs a summary.
func LoadFrom(ctx context.Context, src Source) (*Store, error) {
	start := time.Now()

	store, err := src.Load(ctx)
	if err != nil {
		SnapshotLoadErrors.Inc()
		log.Error().
			Err(err).
			Str("source", src.Name()).
			Msg("Snapshot load failed")
		return nil, err
	}

	log.Info().
		Str("source", src.Name()).
		Int("records", store.Len()).
		Dur("duration", time.Since(start)).
		Msg("Snapshot loaded")

	return store, nil
}
