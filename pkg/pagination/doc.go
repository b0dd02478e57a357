// Package pagination narrows and slices bank views for a response.
//
// Filtering builds one predicate per present filter key and combines them
// with AND. Pagination skips Number*Size views and takes up to Size.
//
// Example usage:
//
//	q, err := query.Parse(r.URL.Query())
//	views := pagination.Apply(
//		bank.ToViews(records, bank.OriginStatic),
//		q.Filters.For(bank.OriginStatic),
//		q.Page,
//	)
//
// Filters must be scoped to the serving origin first: auth only exists on
// remote views and product only on static views.
//
// All functions are pure: input slices are never modified and the result
// is always a non-nil slice, so an empty page serializes as [].
package pagination
