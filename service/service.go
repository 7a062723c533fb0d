// Package service runs the collection pipeline: ask every enabled provider
// for its current data, write the snapshots and overlay text, and record the
// cycle in the history store.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ekstremedia/pi-overlay-data/history"
	"github.com/ekstremedia/pi-overlay-data/overlay"
	"github.com/ekstremedia/pi-overlay-data/provider"
)

// Service composes the providers with the overlay writer and the optional
// history store. One Service instance owns the whole pipeline; cycles run
// sequentially so providers never race on the tracker or the data files.
type Service struct {
	providers []provider.Provider
	writer    *overlay.Writer
	store     *history.Store
}

// New builds a Service. store may be nil to disable history recording.
func New(providers []provider.Provider, writer *overlay.Writer, store *history.Store) *Service {
	return &Service{providers: providers, writer: writer, store: store}
}

// RunOnce executes one collection cycle at the given time. A failing
// provider is logged and skipped; its previous snapshot stays on disk so
// the overlay renderer keeps showing the last known data. The error return
// covers only the file sink, where failure means nothing was published.
func (s *Service) RunOnce(ctx context.Context, now time.Time) error {
	var all []overlay.Data
	for _, p := range s.providers {
		data, err := p.Collect(ctx, now)
		if err != nil {
			log.Printf("provider %s: collect failed: %v", p.Name(), err)
			continue
		}
		if err := s.writer.WriteProviderData(data); err != nil {
			return fmt.Errorf("provider %s: %w", p.Name(), err)
		}
		if s.store != nil {
			if err := s.store.RecordCycle(data); err != nil {
				log.Printf("provider %s: history record failed: %v", p.Name(), err)
			}
		}
		all = append(all, data)
	}
	return s.writer.WriteCombinedOverlay(all)
}

// RunLoop runs collection cycles at the given interval until ctx is
// cancelled. The first cycle runs immediately.
func (s *Service) RunLoop(ctx context.Context, interval time.Duration) error {
	log.Printf("collection loop started, interval %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.RunOnce(ctx, time.Now()); err != nil {
			log.Printf("cycle failed: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Printf("collection loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
