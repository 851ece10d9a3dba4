package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auctionScope/internal/chain"
	"auctionScope/internal/config"
	"auctionScope/internal/contract"
	"auctionScope/internal/ledger"
	"auctionScope/internal/metadata"
	metapg "auctionScope/internal/metadata/postgres"
	"auctionScope/internal/projector"
	"auctionScope/internal/service"
)

// app wires the full dependency graph for one command invocation.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	chain   *chain.Client
	pgStore *metapg.Store
	service *service.Service
}

func buildApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address: %q", cfg.ContractAddress)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	retrier := chain.Retrier{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBackoff,
		Logger:      logger,
	}

	reader, err := contract.NewReader(chainClient, common.HexToAddress(cfg.ContractAddress), retrier)
	if err != nil {
		chainClient.Close()
		return nil, err
	}

	var metaStore metadata.Store
	var pgStore *metapg.Store
	if cfg.PGDSN != "" {
		pgStore, err = metapg.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			chainClient.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			pgStore.Close()
			chainClient.Close()
			return nil, fmt.Errorf("metadata schema: %w", err)
		}
		metaStore = pgStore
	}

	proj := projector.New(reader, metaStore, cfg.AuctionDuration, logger)
	reconciler := ledger.NewReconciler(reader, logger, nil)
	svc := service.New(service.Config{
		Concurrency: cfg.Concurrency,
		CacheTTL:    cfg.CacheTTL,
	}, reader, proj, reconciler, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		chain:   chainClient,
		pgStore: pgStore,
		service: svc,
	}, nil
}

func (a *app) Close() {
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	if a.chain != nil {
		a.chain.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
