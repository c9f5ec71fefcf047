package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omid-ha/leasemanager/config"
	"github.com/omid-ha/leasemanager/cs/consulgw"
	"github.com/omid-ha/leasemanager/leasemanager"
	"github.com/omid-ha/leasemanager/netutil"
	"github.com/omid-ha/leasemanager/panicker"
	"github.com/omid-ha/leasemanager/state"
)

var (
	configFile string
	appConfig  config.App

	rootCmd = &cobra.Command{
		Use:   "tsoleased",
		Short: "tsoleased runs the TSO lease-based master-election core.",
		Long:  "tsoleased acquires and renews a lease in Consul, publishes this replica's coordinates on promotion, and exposes /healthz and /metrics.",
		RunE:  run,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, configureLogging)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		fmt.Sprintf("config file (by default, looks in %v for 'tsoleased.yaml')", config.DefaultConfigPaths))
}

func initConfig() {
	app, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	appConfig = app
}

func configureLogging() {
	if !appConfig.Logging.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(appConfig.Logging.Level)
	if err != nil {
		log.Warn().Str("configured_level", appConfig.Logging.Level).Msg("invalid log level configured, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(cmd *cobra.Command, args []string) error {
	hostAndPort, err := netutil.HostAndPort(appConfig.Lease.NetworkInterfaceName, appConfig.Lease.Port)
	if err != nil {
		return fmt.Errorf("failed to determine this replica's coordinates: %w", err)
	}

	gw, err := consulgw.NewFromConfig(&api.Config{
		Address:    appConfig.Consul.Address,
		Token:      appConfig.Consul.Token,
		Datacenter: appConfig.Consul.Datacenter,
	})
	if err != nil {
		return fmt.Errorf("failed to build consul gateway: %w", err)
	}

	pk := panicker.New(log.Logger)

	ctrl, err := leasemanager.New(leasemanager.Config{
		HostAndPort:    hostAndPort,
		LeasePeriodMs:  appConfig.Lease.PeriodMs,
		LeasePath:      appConfig.Lease.LeasePath,
		CurrentTSOPath: appConfig.Lease.CurrentTSOPath,
		Gateway:        gw,
		// state.NewInMemoryManager is a reference StateManager: it
		// mints a strictly increasing epoch per Reset, sufficient to
		// run this binary standalone. A real TSO deployment supplies
		// its own state.Manager backed by wherever it persists
		// transaction log position.
		StateManager: state.NewInMemoryManager(),
		Panicker:     pk,
		Logger:       log.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to construct lease controller: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to start lease controller: %w", err)
	}

	srv := newHTTPServer(appConfig.Metrics.ListenAddress, ctrl)
	go func() {
		if err := srv.start(); err != nil {
			log.Error().Err(err).Msg("metrics/healthz server exited")
		}
	}()

	log.Info().
		Str("host_and_port", hostAndPort).
		Str("metrics_addr", appConfig.Metrics.ListenAddress).
		Msg("tsoleased started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	_ = srv.stop(shutdownCtx)
	ctrl.Stop()
	return nil
}
