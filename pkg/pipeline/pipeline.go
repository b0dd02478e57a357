// Package pipeline assembles bank views for the static and remote routes:
// parse the query, gather records from the origin, map, order, filter and
// paginate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sternrassler/bankbridge/pkg/bank"
	"github.com/Sternrassler/bankbridge/pkg/catalog"
	"github.com/Sternrassler/bankbridge/pkg/pagination"
	"github.com/Sternrassler/bankbridge/pkg/query"
	"github.com/Sternrassler/bankbridge/pkg/snapshot"
)

// ErrRemoteFailed is returned when the remote aggregation as a whole fails.
// A single failing bank source never causes it.
var ErrRemoteFailed = errors.New("remote aggregation failed")

var tracer = otel.Tracer("bankbridge/pipeline")

// RemoteSource fetches bank records from a list of remote addresses.
// *fetcher.Fetcher implements it.
type RemoteSource interface {
	FetchAll(ctx context.Context, addresses []string) ([]bank.Record, error)
}

// Service serves bank views from the static snapshot and remote sources.
type Service struct {
	catalog *catalog.Catalog
	store   *snapshot.Store
	remote  RemoteSource
	logger  zerolog.Logger
}

// New creates a new service.
func New(cat *catalog.Catalog, store *snapshot.Store, remote RemoteSource) *Service {
	if cat == nil || store == nil || remote == nil {
		panic("pipeline: catalog, store and remote source are required")
	}
	return &Service{
		catalog: cat,
		store:   store,
		remote:  remote,
		logger:  log.With().Str("component", "pipeline").Logger(),
	}
}

// HandleRemote aggregates every catalog source and returns the requested
// page of views, ordered by id.
func (s *Service) HandleRemote(ctx context.Context, raw url.Values) ([]bank.View, error) {
	q, err := query.Parse(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "pipeline.remote", trace.WithAttributes(
		attribute.Int("bank.sources", s.catalog.Len()),
	))
	defer span.End()

	records, err := s.remote.FetchAll(ctx, s.catalog.Addresses())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrRemoteFailed, err)
	}

	views := bank.ToViews(records, bank.OriginRemote)
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].ID < views[j].ID
	})

	page := pagination.Apply(views, q.Filters.For(bank.OriginRemote), q.Page)

	s.logger.Debug().
		Int("records", len(records)).
		Int("returned", len(page)).
		Msg("Remote views assembled")

	return page, nil
}

// HandleStatic returns the requested page of snapshot views in dataset order.
func (s *Service) HandleStatic(ctx context.Context, raw url.Values) ([]bank.View, error) {
	q, err := query.Parse(raw)
	if err != nil {
		return nil, err
	}

	_, span := tracer.Start(ctx, "pipeline.static")
	defer span.End()

	views := bank.ToViews(s.store.All(), bank.OriginStatic)
	page := pagination.Apply(views, q.Filters.For(bank.OriginStatic), q.Page)

	s.logger.Debug().
		Int("records", len(views)).
		Int("returned", len(page)).
		Msg("Static views assembled")

	return page, nil
}
