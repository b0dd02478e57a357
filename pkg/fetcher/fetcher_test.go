package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/bankbridge/pkg/client"
)

// getterFunc adapts a function to the Getter interface.
type getterFunc func(ctx context.Context, address string) (int, []byte, error)

func (f getterFunc) Get(ctx context.Context, address string) (int, []byte, error) {
	return f(ctx, address)
}

// staticGetter serves fixed responses per address.
type staticGetter struct {
	responses map[string]response
}

type response struct {
	status int
	body   string
	err    error
}

func (g staticGetter) Get(_ context.Context, address string) (int, []byte, error) {
	r, ok := g.responses[address]
	if !ok {
		return 0, nil, &client.UpstreamError{Address: address, ErrorClass: client.ErrorClassNetwork, Err: errors.New("connection refused")}
	}
	if r.err != nil {
		return 0, nil, r.err
	}
	return r.status, []byte(r.body), nil
}

func bankBody(id, country string) string {
	return fmt.Sprintf(`{"bic":%q,"name":"Bank %s","countryCode":%q,"auth":"oauth"}`, id, id, country)
}

func TestNew_Defaults(t *testing.T) {
	f := New(staticGetter{}, Config{MaxConcurrency: -3})

	if f.config.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", f.config.MaxConcurrency)
	}
	if f.config.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", f.config.Timeout)
	}
}

func TestNew_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("New should panic with nil getter")
		}
	}()
	New(nil, DefaultConfig())
}

func TestFetchAll_AllSucceed(t *testing.T) {
	g := staticGetter{responses: map[string]response{
		"http://a": {status: 200, body: bankBody("C1", "NO")},
		"http://b": {status: 200, body: bankBody("A1", "DE")},
		"http://c": {status: 200, body: bankBody("B1", "GB")},
	}}

	records, err := New(g, DefaultConfig()).FetchAll(context.Background(), []string{"http://a", "http://b", "http://c"})
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, want := range []string{"C1", "A1", "B1"} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, want)
		}
	}
}

func TestFetchResults_Isolation(t *testing.T) {
	g := staticGetter{responses: map[string]response{
		"http://ok":        {status: 200, body: bankBody("OK1", "NO")},
		"http://notfound":  {status: 404, body: "nope"},
		"http://broken":    {status: 500, body: "boom"},
		"http://malformed": {status: 200, body: `{"bic":`},
		"http://invalid":   {status: 200, body: `{"name":"no id"}`},
	}}
	addresses := []string{"http://ok", "http://notfound", "http://broken", "http://malformed", "http://invalid", "http://down"}

	results, err := New(g, DefaultConfig()).FetchResults(context.Background(), addresses)
	if err != nil {
		t.Fatalf("FetchResults failed: %v", err)
	}

	if len(results) != len(addresses) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(addresses))
	}

	want := []Outcome{OutcomeSuccess, OutcomeDegraded, OutcomeDegraded, OutcomeDegraded, OutcomeDegraded, OutcomeFailed}
	for i, r := range results {
		if r.Address != addresses[i] {
			t.Errorf("results[%d].Address = %q, want %q", i, r.Address, addresses[i])
		}
		if r.Outcome != want[i] {
			t.Errorf("results[%d].Outcome = %q, want %q (err: %v)", i, r.Outcome, want[i], r.Err)
		}
		if r.Outcome == OutcomeSuccess && r.Err != nil {
			t.Errorf("results[%d] success carries error %v", i, r.Err)
		}
		if r.Outcome != OutcomeSuccess && r.Err == nil {
			t.Errorf("results[%d] %s without error", i, r.Outcome)
		}
	}

	var upstream *client.UpstreamError
	if !errors.As(results[1].Err, &upstream) || upstream.ErrorClass != client.ErrorClassClient {
		t.Errorf("404 result error = %v, want client class UpstreamError", results[1].Err)
	}
	if !errors.As(results[2].Err, &upstream) || upstream.ErrorClass != client.ErrorClassServer {
		t.Errorf("500 result error = %v, want server class UpstreamError", results[2].Err)
	}
	if !errors.Is(results[3].Err, client.ErrDecode) {
		t.Errorf("malformed result error = %v, want ErrDecode", results[3].Err)
	}
}

func TestFetchAll_PartialFailure(t *testing.T) {
	g := staticGetter{responses: map[string]response{
		"http://a": {status: 200, body: bankBody("A1", "NO")},
		"http://b": {status: 503},
		"http://c": {status: 404},
	}}

	records, err := New(g, DefaultConfig()).FetchAll(context.Background(), []string{"http://a", "http://b", "http://c"})
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "A1" {
		t.Errorf("records = %+v, want only A1", records)
	}
}

func TestFetchAll_AllUnreachable(t *testing.T) {
	records, err := New(staticGetter{}, DefaultConfig()).FetchAll(context.Background(), []string{"http://a", "http://b"})
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if records == nil {
		t.Error("records should be an empty slice, not nil")
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestFetchAll_NoAddresses(t *testing.T) {
	records, err := New(staticGetter{}, DefaultConfig()).FetchAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %v, want empty slice", records)
	}
}

func TestFetchAll_RunsInParallel(t *testing.T) {
	const n = 8
	var started sync.WaitGroup
	started.Add(n)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	g := getterFunc(func(ctx context.Context, address string) (int, []byte, error) {
		started.Done()
		select {
		case <-allStarted:
			return 200, []byte(bankBody(address, "NO")), nil
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	})

	addresses := make([]string, n)
	for i := range addresses {
		addresses[i] = fmt.Sprintf("ID%d", i)
	}

	records, err := New(g, Config{Timeout: 2 * time.Second}).FetchAll(context.Background(), addresses)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != n {
		t.Errorf("len(records) = %d, want %d (requests did not overlap)", len(records), n)
	}
}

func TestFetchAll_MaxConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	g := getterFunc(func(ctx context.Context, address string) (int, []byte, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return 200, []byte(bankBody(address, "NO")), nil
	})

	addresses := make([]string, 10)
	for i := range addresses {
		addresses[i] = fmt.Sprintf("ID%d", i)
	}

	records, err := New(g, Config{MaxConcurrency: 2}).FetchAll(context.Background(), addresses)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 10 {
		t.Errorf("len(records) = %d, want 10", len(records))
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestFetchResults_PerRequestTimeout(t *testing.T) {
	g := getterFunc(func(ctx context.Context, address string) (int, []byte, error) {
		if address == "slow" {
			<-ctx.Done()
			return 0, nil, ctx.Err()
		}
		return 200, []byte(bankBody(address, "NO")), nil
	})

	start := time.Now()
	results, err := New(g, Config{Timeout: 50 * time.Millisecond}).FetchResults(context.Background(), []string{"fast", "slow"})
	if err != nil {
		t.Fatalf("FetchResults failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("FetchResults took %s, timeout not applied", elapsed)
	}

	if results[0].Outcome != OutcomeSuccess {
		t.Errorf("fast outcome = %q, want success", results[0].Outcome)
	}
	if results[1].Outcome != OutcomeFailed {
		t.Errorf("slow outcome = %q, want failed", results[1].Outcome)
	}
	if !errors.Is(results[1].Err, context.DeadlineExceeded) {
		t.Errorf("slow error = %v, want DeadlineExceeded", results[1].Err)
	}
}

func TestFetchAll_CallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	g := getterFunc(func(ctx context.Context, address string) (int, []byte, error) {
		cancel()
		<-ctx.Done()
		return 0, nil, ctx.Err()
	})

	_, err := New(g, Config{MaxConcurrency: 1}).FetchAll(ctx, []string{"a", "b", "c"})
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("FetchAll error = %v, want ErrInterrupted", err)
	}
}

func TestFetchAll_CancelledAfterEveryTaskSettled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	g := getterFunc(func(_ context.Context, address string) (int, []byte, error) {
		if calls.Add(1) == 3 {
			cancel()
		}
		return 200, []byte(bankBody(address, "NO")), nil
	})

	records, err := New(g, Config{MaxConcurrency: 1}).FetchAll(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("FetchAll error = %v, want nil", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, want)
		}
	}
}

func TestFetchResults_CallerCancelledFillsEverySlot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := getterFunc(func(ctx context.Context, address string) (int, []byte, error) {
		return 200, []byte(bankBody(address, "NO")), nil
	})

	results, err := New(g, Config{MaxConcurrency: 1}).FetchResults(ctx, []string{"a", "b", "c"})
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("FetchResults error = %v, want ErrInterrupted", err)
	}
	for i, r := range results {
		if r.Outcome != OutcomeFailed || !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d] = %+v, want failed with context.Canceled", i, r)
		}
	}
}

func TestFetchResults_GetterPanic(t *testing.T) {
	g := getterFunc(func(ctx context.Context, address string) (int, []byte, error) {
		if address == "bad" {
			panic("boom")
		}
		return 200, []byte(bankBody(address, "NO")), nil
	})

	results, err := New(g, DefaultConfig()).FetchResults(context.Background(), []string{"good", "bad"})
	if err != nil {
		t.Fatalf("FetchResults failed: %v", err)
	}
	if results[0].Outcome != OutcomeSuccess {
		t.Errorf("good outcome = %q, want success", results[0].Outcome)
	}
	if results[1].Outcome != OutcomeFailed || results[1].Err == nil {
		t.Errorf("bad result = %+v, want failed with error", results[1])
	}
}

func TestFetchAll_DeterministicUnderReordering(t *testing.T) {
	g := staticGetter{responses: map[string]response{
		"http://a": {status: 200, body: bankBody("A1", "NO")},
		"http://b": {status: 500},
		"http://c": {status: 200, body: bankBody("C1", "DE")},
		"http://d": {status: 200, body: bankBody("D1", "GB")},
	}}
	f := New(g, DefaultConfig())

	ids := func(addresses []string) []string {
		records, err := f.FetchAll(context.Background(), addresses)
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, r.ID)
		}
		sort.Strings(out)
		return out
	}

	first := ids([]string{"http://a", "http://b", "http://c", "http://d"})
	second := ids([]string{"http://d", "http://c", "http://b", "http://a"})

	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("record sets differ: %v vs %v", first, second)
	}
}
