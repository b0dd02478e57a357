package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/bankbridge/pkg/bank"
	"github.com/Sternrassler/bankbridge/pkg/client"
)

// ErrInterrupted is returned when the caller's context ends before every
// task has settled.
var ErrInterrupted = errors.New("remote fetch interrupted")

var tracer = otel.Tracer("bankbridge/fetcher")

// Config holds fetcher configuration
type Config struct {
	// MaxConcurrency caps the number of parallel requests.
	// 0 runs one worker per address.
	MaxConcurrency int
	// Timeout per remote request
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 0,
		Timeout:        10 * time.Second,
	}
}

// Getter is the outbound GET capability the fetcher depends on.
// *client.Client implements it.
type Getter interface {
	// Get returns the response status and body, or an error when no
	// response was received.
	Get(ctx context.Context, address string) (status int, body []byte, err error)
}

// Outcome tags the result of a single remote request.
type Outcome string

const (
	// OutcomeSuccess means a 200 response with a valid record.
	OutcomeSuccess Outcome = "success"
	// OutcomeDegraded means a response was received but yielded no record.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFailed means no response was received.
	OutcomeFailed Outcome = "failed"
)

// Result is the tagged result of fetching one address.
type Result struct {
	Address string
	Record  bank.Record
	Outcome Outcome
	Err     error
}

// Fetcher queries remote bank sources in parallel
type Fetcher struct {
	getter Getter
	config Config
}

// New creates a new fetcher
func New(getter Getter, config Config) *Fetcher {
	if getter == nil {
		panic("getter cannot be nil")
	}
	if config.MaxConcurrency < 0 {
		config.MaxConcurrency = 0
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Fetcher{
		getter: getter,
		config: config,
	}
}

// FetchAll fetches every address and returns the successfully decoded
// records in address order. Failed sources are dropped.
func (f *Fetcher) FetchAll(ctx context.Context, addresses []string) ([]bank.Record, error) {
	results, err := f.FetchResults(ctx, addresses)
	if err != nil {
		return nil, err
	}

	records := make([]bank.Record, 0, len(results))
	for _, r := range results {
		if r.Outcome == OutcomeSuccess {
			records = append(records, r.Record)
		}
	}
	return records, nil
}

// FetchResults fetches every address and returns one tagged result per
// address, in address order. It returns only after every task has settled.
func (f *Fetcher) FetchResults(ctx context.Context, addresses []string) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(addresses))
	if len(addresses) == 0 {
		return results, nil
	}

	workers := f.config.MaxConcurrency
	if workers == 0 || workers > len(addresses) {
		workers = len(addresses)
	}

	log.Debug().
		Int("addresses", len(addresses)).
		Int("workers", workers).
		Msg("Starting remote fetch")

	jobs := make(chan int, len(addresses))
	for i := range addresses {
		jobs <- i
	}
	close(jobs)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		workerID := w
		g.Go(func() error {
			return f.worker(ctx, addresses, jobs, results, workerID)
		})
	}

	waitErr := g.Wait()
	fetchDuration.Observe(time.Since(start).Seconds())

	var succeeded, degraded, failed int
	for _, r := range results {
		fetchResultsTotal.WithLabelValues(string(r.Outcome)).Inc()
		switch r.Outcome {
		case OutcomeSuccess:
			succeeded++
		case OutcomeDegraded:
			degraded++
		default:
			failed++
		}
	}

	if waitErr != nil {
		fetchInterruptedTotal.Inc()
		log.Error().
			Err(waitErr).
			Int("succeeded", succeeded).
			Int("total", len(addresses)).
			Msg("Remote fetch interrupted")
		return results, fmt.Errorf("%w: %v", ErrInterrupted, waitErr)
	}

	log.Info().
		Int("succeeded", succeeded).
		Int("degraded", degraded).
		Int("failed", failed).
		Int("total", len(addresses)).
		Dur("duration", time.Since(start)).
		Msg("Remote fetch complete")

	return results, nil
}

// worker processes address indexes from the queue. Every index it takes is
// written to exactly one slot of results. It reports the caller's context
// error only when it had to skip a queued address because of it; tasks that
// settled before the cancellation keep their outcome.
func (f *Fetcher) worker(ctx context.Context, addresses []string, jobs <-chan int, results []Result, workerID int) error {
	var (
		processed int
		skipErr   error
	)

	for idx := range jobs {
		if err := ctx.Err(); err != nil {
			results[idx] = Result{
				Address: addresses[idx],
				Outcome: OutcomeFailed,
				Err:     err,
			}
			skipErr = err
			continue
		}

		results[idx] = f.fetchOne(ctx, addresses[idx])
		processed++
	}

	log.Debug().
		Int("worker_id", workerID).
		Int("processed", processed).
		Msg("Worker completed")

	return skipErr
}

// fetchOne queries a single address under the per-request timeout.
func (f *Fetcher) fetchOne(ctx context.Context, address string) (result Result) {
	ctx, span := tracer.Start(ctx, "fetcher.fetch", trace.WithAttributes(
		attribute.String("bank.address", address),
	))
	defer span.End()

	result.Address = address
	defer func() {
		if p := recover(); p != nil {
			result = Result{
				Address: address,
				Outcome: OutcomeFailed,
				Err:     fmt.Errorf("getter panic: %v", p),
			}
		}
		span.SetAttributes(attribute.String("bank.outcome", string(result.Outcome)))
		if result.Err != nil {
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, string(result.Outcome))
			log.Warn().
				Err(result.Err).
				Str("address", address).
				Str("outcome", string(result.Outcome)).
				Msg("Remote source dropped")
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	status, body, err := f.getter.Get(taskCtx, address)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	span.SetAttributes(attribute.Int("http.status_code", status))
	if status != http.StatusOK {
		result.Outcome = OutcomeDegraded
		result.Err = client.StatusError(address, status)
		return result
	}

	record, err := client.DecodeRecord(body)
	if err != nil {
		result.Outcome = OutcomeDegraded
		result.Err = err
		return result
	}

	result.Outcome = OutcomeSuccess
	result.Record = record
	return result
}
