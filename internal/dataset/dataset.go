// Package dataset embeds the default bank datasets shipped with the service.
package dataset

import _ "embed"

//go:embed banks-v1.json
var staticBanks []byte

//go:embed banks-v2.json
var remoteCatalog []byte

// StaticBanks returns the default static snapshot document.
func StaticBanks() []byte {
	return append([]byte(nil), staticBanks...)
}

// RemoteCatalog returns the default remote entry catalog document.
func RemoteCatalog() []byte {
	return append([]byte(nil), remoteCatalog...)
}
