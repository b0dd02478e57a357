// Package fetcher provides parallel fan-out fetching of remote bank sources.
//
// Every address in the catalog is queried concurrently through a worker pool.
// Each task writes a tagged Result into its own slot, and the aggregate is
// read only after all tasks have settled. A failing source never fails the
// call: non-200 statuses, transport errors and malformed bodies are logged,
// counted and dropped.
//
// Example usage:
//
//	httpClient, _ := client.New(client.DefaultConfig("bankbridge/1.0.0"))
//	f := fetcher.New(httpClient, fetcher.DefaultConfig())
//	records, err := f.FetchAll(ctx, catalog.Addresses())
//
// The fetcher:
//   - Spawns one worker per address (or MaxConcurrency workers when set)
//   - Bounds every request by Config.Timeout
//   - Waits for every task before returning (single join point)
//   - Returns ErrInterrupted only when the caller's context ends first
package fetcher
