// Package catalog loads the entry catalog: the set of remote bank endpoints
// queried on every remote aggregation request.
//
// The catalog document maps a display name to an address. Both JSON and YAML
// documents are accepted since YAML is a superset of JSON:
//
//	{"Royal Bank of Fun": "http://localhost:1234/rbf"}
//
//	Royal Bank of Fun: http://localhost:1234/rbf
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrEmptyAddress is returned when a catalog entry has no address.
var ErrEmptyAddress = errors.New("empty address")

// Entry is a single remote source.
type Entry struct {
	Name    string
	Address string
}

// Catalog is the immutable list of remote sources. It is safe for
// concurrent readers.
type Catalog struct {
	entries []Entry
}

// Load parses a catalog document.
func Load(data []byte) (*Catalog, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for name, address := range raw {
		if address == "" {
			return nil, fmt.Errorf("catalog entry %q: %w", name, ErrEmptyAddress)
		}
		if _, err := url.ParseRequestURI(address); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Address: address})
	}

	// Map iteration order is random; keep dispatch order reproducible.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return &Catalog{entries: entries}, nil
}

// LoadFile reads and parses a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// New builds a catalog from explicit entries.
func New(entries ...Entry) *Catalog {
	return &Catalog{entries: append([]Entry(nil), entries...)}
}

// FromAddresses builds a catalog from bare addresses, naming each entry
// after its address.
func FromAddresses(addresses ...string) *Catalog {
	entries := make([]Entry, 0, len(addresses))
	for _, a := range addresses {
		entries = append(entries, Entry{Name: a, Address: a})
	}
	return &Catalog{entries: entries}
}

// Addresses returns a copy of the configured addresses.
func (c *Catalog) Addresses() []string {
	addresses := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		addresses = append(addresses, e.Address)
	}
	return addresses
}

// Entries returns a copy of the catalog entries.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
