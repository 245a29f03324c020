// Package data carries the sample monastery dataset compiled into the binary.
package data

import (
	_ "embed"
)

//go:embed monasteries.json
var monasteries []byte

// Monasteries returns a copy of the embedded dataset document.
func Monasteries() []byte {
	return append([]byte(nil), monasteries...)
}
