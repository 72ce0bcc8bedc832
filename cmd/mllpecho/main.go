package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/mllpctl/internal/echo"
	"github.com/danmuck/mllpctl/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mllpecho: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		mode       string
		opsAddr    string
		multicore  bool
	)
	cmd := &cobra.Command{
		Use:           "mllpecho",
		Short:         "Run a configurable MLLP responder",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logFile, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("mode") {
				cfg.Mode = echo.Mode(mode)
			}
			if cmd.Flags().Changed("ops-addr") {
				cfg.OpsAddr = opsAddr
			}
			if cmd.Flags().Changed("multicore") {
				cfg.Multicore = multicore
			}

			logCfg := logging.Runtime("mllpecho")
			logCfg.File = logFile
			logging.Configure(logCfg)

			srv, err := echo.NewServer(cfg)
			if err != nil {
				return err
			}
			go waitForShutdown(srv)

			if err := srv.Run(); err != nil {
				log.Fatal().Err(err).Msg("echo server stopped")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&addr, "addr", "", "listen address, overrides config")
	flags.StringVar(&mode, "mode", "", "reply mode: ack, echo, or static")
	flags.StringVar(&opsAddr, "ops-addr", "", "metrics and pprof address, overrides config")
	flags.BoolVar(&multicore, "multicore", false, "run one event loop per core")
	return cmd
}

func waitForShutdown(srv *echo.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig

	log.Info().Str("signal", s.String()).Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
