// Package provider defines the source abstraction the overlay service
// composes: each provider produces display-ready overlay data for a cycle.
package provider

import (
	"context"
	"time"

	"github.com/ekstremedia/pi-overlay-data/overlay"
)

// Provider is a single overlay data source (ships, aurora, tides). Collect
// runs one collection cycle; implementations do their own fetching, caching
// and filtering and return display-ready records.
type Provider interface {
	Name() string
	Collect(ctx context.Context, now time.Time) (overlay.Data, error)
}
