// Command overlayd collects ship, aurora and tide data for the timelapse
// camera overlay, writes snapshots to the data directory and serves them
// over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekstremedia/pi-overlay-data/ais"
	"github.com/ekstremedia/pi-overlay-data/config"
	"github.com/ekstremedia/pi-overlay-data/history"
	"github.com/ekstremedia/pi-overlay-data/internal"
	"github.com/ekstremedia/pi-overlay-data/overlay"
	"github.com/ekstremedia/pi-overlay-data/provider"
	"github.com/ekstremedia/pi-overlay-data/provider/aurora"
	"github.com/ekstremedia/pi-overlay-data/provider/ships"
	"github.com/ekstremedia/pi-overlay-data/provider/tides"
	"github.com/ekstremedia/pi-overlay-data/service"
	"github.com/ekstremedia/pi-overlay-data/web"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "overlayd",
		Short: "Zone presence and conditions collector for timelapse overlays",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			internal.InitLogging(verbose)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(runCmd(), loopCmd(), serveCmd(), zonesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single collection cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			svc, store, err := buildService(cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)
			return svc.RunOnce(cmd.Context(), time.Now())
		},
	}
}

func loopCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Run collection cycles continuously",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			svc, store, err := buildService(cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)
			err = svc.RunLoop(cmd.Context(), interval)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Minute, "time between collection cycles")
	return cmd
}

func serveCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collection loop and the HTTP API together",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			svc, store, err := buildService(cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := svc.RunLoop(ctx, interval); err != nil && err != context.Canceled {
					log.Printf("collection loop exited: %v", err)
				}
			}()

			srv := web.NewServer(cfg.Server.Port, cfg.DataDir, store)
			srv.Start()
			srv.WaitForShutdown(ctx)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Minute, "time between collection cycles")
	return cmd
}

func zonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List the configured zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			zones, err := cfg.GeomZones()
			if err != nil {
				return err
			}
			for _, z := range zones {
				min, max := z.Ring.BoundingBox()
				fmt.Printf("%-16s %-24s %d vertices, bbox [%.4f,%.4f]..[%.4f,%.4f]\n",
					z.ID, z.Name, len(z.Ring), min.Lon, min.Lat, max.Lon, max.Lat)
			}
			return nil
		},
	}
}

// buildService wires the enabled providers to the writer and the history
// store. The writer's staleness window follows the ships persist window so
// a restart clears anything the debounce would have dropped anyway.
func buildService(cfg config.AppConfig) (*service.Service, *history.Store, error) {
	writer, err := overlay.NewWriter(cfg.DataDir, cfg.Ships.Persist())
	if err != nil {
		return nil, nil, err
	}

	var providers []provider.Provider
	if cfg.Ships.Enabled {
		zones, err := cfg.GeomZones()
		if err != nil {
			return nil, nil, err
		}
		client := ais.NewClient(ais.ClientConfig{
			ClientID:     cfg.Ships.ClientID,
			ClientSecret: cfg.Ships.ClientSecret,
		})
		p, err := ships.New(client, zones, cfg.Ships, cfg.Camera)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, p)
	}
	if cfg.Aurora.Enabled {
		providers = append(providers, aurora.New(cfg.Aurora, cfg.DataDir))
	}
	if cfg.Tides.Enabled {
		providers = append(providers, tides.New(cfg.Tides, cfg.DataDir))
	}

	var store *history.Store
	if cfg.History.Enabled {
		path := cfg.History.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.DataDir, path)
		}
		store, err = history.Open(path)
		if err != nil {
			return nil, nil, err
		}
	}

	return service.New(providers, writer, store), store, nil
}

func closeStore(store *history.Store) {
	if store != nil {
		_ = store.Close()
	}
}
