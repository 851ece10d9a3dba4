package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "auctiond",
		Short:        "Read-only auction ledger service",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "chain RPC URL")
	root.PersistentFlags().String("contract", "", "auction house contract address")
	root.PersistentFlags().Int("max-retries", 3, "attempts per RPC call")
	root.PersistentFlags().Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	root.PersistentFlags().Duration("auction-duration", 72*time.Hour, "nominal auction duration used to back-compute start times")
	root.PersistentFlags().Int("concurrency", 8, "max concurrent auction projections")
	root.PersistentFlags().Duration("cache-ttl", 30*time.Second, "auction list cache TTL, 0 disables")
	root.PersistentFlags().String("pg-dsn", "", "Postgres DSN for metadata enrichment (optional)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP read API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")

	root.AddCommand(serveCmd)

	auctionsCmd := &cobra.Command{
		Use:   "auctions",
		Short: "List all auctions as JSON",
		RunE:  runAuctions,
	}
	root.AddCommand(auctionsCmd)

	bidsCmd := &cobra.Command{
		Use:   "bids <index>",
		Short: "Print the reconstructed bid ledger for one auction",
		Args:  cobra.ExactArgs(1),
		RunE:  runBids,
	}
	root.AddCommand(bidsCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print contract-wide statistics",
		RunE:  runStats,
	}
	root.AddCommand(statsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
