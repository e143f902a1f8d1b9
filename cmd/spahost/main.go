// Copyright 2024 The spahost Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/clicktrack/spahost"
	"github.com/clicktrack/spahost/internal/config"
	"github.com/clicktrack/spahost/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("cannot load configuration")
	}
	if err := newRootCommand(cfg).ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("spahost failed")
		os.Exit(1)
	}
}

// newRootCommand returns the spahost command, with its flags defaulting to
// the settings in cfg.
func newRootCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spahost [OPTIONS] [ROOT]",
		Short:         "Serve a single page application, falling back to its entry document.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Root = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	installFlags(cmd.Flags(), cfg)
	return cmd
}

func installFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on")
	flags.StringVar(&cfg.Root, "root", cfg.Root, "static root directory")
	flags.StringVar(&cfg.Fallback, "fallback", cfg.Fallback, "fallback document inside the static root")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	flags.BoolVar(&cfg.BaseRewriting, "base-rewriting", cfg.BaseRewriting,
		"rewrite the fallback document's <base href> to the forwarded base path")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout,
		"maximum time to wait for active requests when shutting down")
}

// run serves the static root until ctx gets cancelled.
func run(ctx context.Context, cfg *config.Config, logout io.Writer) error {
	log := cfg.Logger(logout)

	var opts []spahost.Option
	if cfg.BaseRewriting {
		opts = append(opts, spahost.WithBaseRewriting())
	}
	h, err := spahost.NewDirHandler(cfg.Root, cfg.Fallback, opts...)
	if err != nil {
		return errors.Wrap(err, "setting up static server")
	}
	log.WithFields(logrus.Fields{
		"root":     cfg.Root,
		"fallback": h.FallbackName(),
	}).Info("serving static root")

	srv := server.New(server.Options{
		Addr:              cfg.Addr,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	}, h, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
