package main

import (
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/changelog/server"
	"github.com/flanksource/changelog/shutdown"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Serve the changelog HTTP API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, err := loadService()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		srv := server.New(cfg.Server, svc)
		shutdown.AddHookWithPriority("http server", shutdown.PriorityServer, srv.Shutdown)
		shutdown.AddHookWithPriority("caches", shutdown.PriorityCaches, func() {
			for _, s := range svc.CacheStats() {
				logger.Debugf("cache %s: %d entries, %d hits, %d misses, %d evictions", s.Name, s.Entries, s.Hits, s.Misses, s.Evictions)
			}
		})

		errs := make(chan error, 1)
		go func() { errs <- srv.ListenAndServe() }()

		select {
		case err := <-errs:
			return err
		case <-waitForSignal(cmd):
			return <-errs
		}
	},
}

// waitForSignal closes the returned channel once shutdown hooks have run.
func waitForSignal(cmd *cobra.Command) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		shutdown.WaitForSignal(cmd.Context())
		close(done)
	}()
	return done
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr and CHANGELOG_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
