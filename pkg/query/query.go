// Package query parses and validates the caller's query parameters into
// filters and pagination settings.
package query

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/Sternrassler/bankbridge/pkg/bank"
)

// Recognized filter keys.
const (
	KeyCountryCode = "countrycode"
	KeyID          = "id"
	KeyName        = "name"
	KeyProduct     = "product"
	KeyAuth        = "auth"
)

// Pagination parameters.
const (
	ParamPageNo = "pageNo"
	ParamSize   = "size"

	// DefaultPageSize applies when size is absent.
	DefaultPageSize = 5
)

// Validation messages returned to callers verbatim.
const (
	MsgInvalidPageNumber = "Page number is not valid!"
	MsgInvalidPageSize   = "Page size is not valid!"
	MsgNotInteger        = "pageNo and size should be integer values!"
)

// ErrInvalid matches every ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid query")

// ValidationError is a caller input error carrying a fixed message.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

var filterKeys = []string{KeyCountryCode, KeyID, KeyName, KeyProduct, KeyAuth}

// Filters maps recognized filter keys to the requested value.
type Filters map[string]string

// IsEmpty reports whether no filter is present.
func (f Filters) IsEmpty() bool {
	return len(f) == 0
}

// For returns the filters that apply to views of the given origin.
// product only exists on static views and auth only on remote views.
func (f Filters) For(origin bank.Origin) Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		switch {
		case k == KeyProduct && origin != bank.OriginStatic:
			continue
		case k == KeyAuth && origin != bank.OriginRemote:
			continue
		}
		out[k] = v
	}
	return out
}

// Page selects a slice of the filtered result.
type Page struct {
	Size   int
	Number int
}

// DefaultPage returns the first page of DefaultPageSize.
func DefaultPage() Page {
	return Page{Size: DefaultPageSize, Number: 0}
}

// Query is a parsed request.
type Query struct {
	Filters Filters
	Page    Page
}

// Validate checks the pagination parameters. Empty values count as absent.
// pageNo is checked before size.
func Validate(values url.Values) error {
	if _, err := parseParam(values, ParamPageNo, MsgInvalidPageNumber); err != nil {
		return err
	}
	if _, err := parseParam(values, ParamSize, MsgInvalidPageSize); err != nil {
		return err
	}
	return nil
}

// Parse validates values and extracts filters and pagination. Only the first
// value of each key is used and unrecognized keys are ignored.
func Parse(values url.Values) (Query, error) {
	q := Query{
		Filters: Filters{},
		Page:    DefaultPage(),
	}

	number, err := parseParam(values, ParamPageNo, MsgInvalidPageNumber)
	if err != nil {
		return Query{}, err
	}
	size, err := parseParam(values, ParamSize, MsgInvalidPageSize)
	if err != nil {
		return Query{}, err
	}
	if number != nil {
		q.Page.Number = *number
	}
	if size != nil {
		q.Page.Size = *size
	}

	for _, key := range filterKeys {
		if vs, ok := values[key]; ok && len(vs) > 0 {
			q.Filters[key] = vs[0]
		}
	}

	return q, nil
}

// parseParam returns nil when the parameter is absent or empty.
func parseParam(values url.Values, key, negativeMsg string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	// Values must fit a signed 32-bit integer.
	n64, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, &ValidationError{Message: MsgNotInteger}
	}
	if n64 < 0 {
		return nil, &ValidationError{Message: negativeMsg}
	}
	n := int(n64)
	return &n, nil
}
