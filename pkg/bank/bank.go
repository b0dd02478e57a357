// Package bank defines the bank reference data model shared by the static
// snapshot and the remote aggregation paths.
package bank

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord indicates a record is missing a mandatory field.
var ErrInvalidRecord = errors.New("invalid bank record")

// Origin identifies which data source produced a view.
type Origin string

const (
	// OriginStatic is the preloaded in-memory snapshot.
	OriginStatic Origin = "static"

	// OriginRemote is the live aggregation over remote bank endpoints.
	OriginRemote Origin = "remote"
)

// Record is the origin-agnostic internal representation of a bank.
// It is decoded from both the static dataset and remote bank responses.
type Record struct {
	// ID is the bank identifier (BIC).
	ID string `json:"bic"`

	// Name is the display name.
	Name string `json:"name"`

	// CountryCode is the ISO 3166 alpha-2 country code.
	CountryCode string `json:"countryCode"`

	// Auth is the supported authentication method (remote origin only).
	Auth string `json:"auth,omitempty"`

	// Products lists the supported products (static origin only).
	Products []string `json:"products,omitempty"`
}

// Validate reports whether the record carries the fields every usable record needs.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing bic", ErrInvalidRecord)
	}
	if r.CountryCode == "" {
		return fmt.Errorf("%w: missing countryCode for %s", ErrInvalidRecord, r.ID)
	}
	return nil
}

// View is the public response shape. Fields not populated for the serving
// origin are omitted from the JSON output.
type View struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	CountryCode string   `json:"countryCode,omitempty"`
	Auth        string   `json:"auth,omitempty"`
	Products    []string `json:"products,omitempty"`
}

// ToView projects the record onto the view shape for the given origin.
// Remote views carry auth, static views carry products.
func (r Record) ToView(origin Origin) View {
	v := View{
		ID:          r.ID,
		Name:        r.Name,
		CountryCode: r.CountryCode,
	}
	switch origin {
	case OriginRemote:
		v.Auth = r.Auth
	case OriginStatic:
		if len(r.Products) > 0 {
			v.Products = append([]string(nil), r.Products...)
		}
	}
	return v
}

// ToViews maps records to views in order.
func ToViews(records []Record, origin Origin) []View {
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, r.ToView(origin))
	}
	return views
}

// HasProduct returns true if the view lists the product exactly.
func (v View) HasProduct(product string) bool {
	for _, p := range v.Products {
		if p == product {
			return true
		}
	}
	return false
}
