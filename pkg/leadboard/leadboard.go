// Package leadboard re-exports the lead dashboard service for host applications.
package leadboard

import (
	core "github.com/goliatone/go-leadboard/components/leads"
)

// Service exposes the underlying components/leads.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
