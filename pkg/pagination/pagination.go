package pagination

import (
	"github.com/Sternrassler/bankbridge/pkg/bank"
	"github.com/Sternrassler/bankbridge/pkg/query"
)

// Predicate reports whether a view passes a filter.
type Predicate func(bank.View) bool

// Predicates builds one predicate per present filter key. product matches
// any element of Products, every other key is exact string equality.
func Predicates(filters query.Filters) []Predicate {
	preds := make([]Predicate, 0, len(filters))

	if v, ok := filters[query.KeyCountryCode]; ok {
		preds = append(preds, func(b bank.View) bool { return b.CountryCode == v })
	}
	if v, ok := filters[query.KeyID]; ok {
		preds = append(preds, func(b bank.View) bool { return b.ID == v })
	}
	if v, ok := filters[query.KeyName]; ok {
		preds = append(preds, func(b bank.View) bool { return b.Name == v })
	}
	if v, ok := filters[query.KeyAuth]; ok {
		preds = append(preds, func(b bank.View) bool { return b.Auth == v })
	}
	if v, ok := filters[query.KeyProduct]; ok {
		preds = append(preds, func(b bank.View) bool { return b.HasProduct(v) })
	}

	return preds
}

// Filter returns the views that satisfy every filter, in input order.
func Filter(views []bank.View, filters query.Filters) []bank.View {
	preds := Predicates(filters)

	out := make([]bank.View, 0, len(views))
	for _, v := range views {
		if matchAll(v, preds) {
			out = append(out, v)
		}
	}
	return out
}

func matchAll(v bank.View, preds []Predicate) bool {
	for _, p := range preds {
		if !p(v) {
			return false
		}
	}
	return true
}

// Paginate returns views [Number*Size, Number*Size+Size). A page past the
// end, or a zero Size, yields an empty slice.
func Paginate(views []bank.View, page query.Page) []bank.View {
	if page.Size <= 0 || page.Number < 0 || page.Number > len(views)/page.Size {
		return []bank.View{}
	}

	skip := page.Number * page.Size
	end := len(views)
	if page.Size < end-skip {
		end = skip + page.Size
	}

	out := make([]bank.View, end-skip)
	copy(out, views[skip:end])
	return out
}

// Apply filters views when any filter is present, then paginates.
func Apply(views []bank.View, filters query.Filters, page query.Page) []bank.View {
	if !filters.IsEmpty() {
		views = Filter(views, filters)
	}
	return Paginate(views, page)
}
