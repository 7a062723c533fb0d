// Package overlay defines the display-ready records produced by providers
// and the file sink consumed by the raspilapse overlay renderer.
package overlay

import (
	"time"

	"github.com/google/uuid"
)

// Item is one display-ready record. Ref identifies the underlying entity
// (MMSI, station, ...); OverlayLine is the human-readable text rendered on
// the timelapse frame.
type Item interface {
	Ref() string
	OverlayLine() string
}

// Data is the aggregate output of one provider for one collection cycle.
type Data struct {
	Provider  string    `json:"provider"`
	CycleID   string    `json:"cycle_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Count     int       `json:"count"`
	Items     []Item    `json:"items"`
}

// NewData stamps a fresh cycle ID and count onto a provider's items.
func NewData(provider string, now time.Time, items []Item) Data {
	return Data{
		Provider:  provider,
		CycleID:   uuid.NewString(),
		UpdatedAt: now.UTC(),
		Count:     len(items),
		Items:     items,
	}
}

// Lines renders the overlay text lines for all items.
func (d Data) Lines() []string {
	lines := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		lines = append(lines, item.OverlayLine())
	}
	return lines
}
