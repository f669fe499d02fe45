//go:build tools
// +build tools

package tools

// Tracks tool dependencies in go.mod. Tools are invoked during
// development and migration runs, never imported by the engine itself.

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
