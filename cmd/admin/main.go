// Command admin is the operator CLI for Citizen Pulse.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/logger"
	"citizenpulse/backend/internal/storage"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd(connect).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend is what the commands operate on.
type backend struct {
	Store  storage.Storage
	Events events.Publisher
	close  func()
}

type connectFunc func(ctx context.Context) (*backend, error)

// connect opens the database and, when reachable, the change broker so that connected
// clients refresh after an operator change.
func connect(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level})

	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	var c cleanup
	if sqlDB, err := db.DB(); err == nil {
		c.add(sqlDB.Close)
	}
	b := &backend{Events: events.Discard{}}

	rdb, err := storage.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, change events will not be published", "error", err)
	} else {
		c.add(rdb.Close)
	}
	b.Store = storage.NewStorageService(db, rdb)

	broker, err := events.NewBroker(cfg.Events, rdb)
	if err != nil {
		slog.Warn("Event broker unavailable", "error", err)
	} else {
		b.Events = broker
		c.add(broker.Close)
	}
	b.close = c.run
	return b, nil
}

// cleanup closes resources in reverse order of acquisition. Failures are logged and the
// remaining resources are still closed.
type cleanup []func() error

func (c *cleanup) add(fn func() error) { *c = append(*c, fn) }

func (c *cleanup) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		if err := (*c)[i](); err != nil {
			slog.Warn("Failed to release resource", "error", err)
		}
	}
	*c = nil
}

func rootCmd(open connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Citizen Pulse operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(setRoleCmd(open), setStatusCmd(open), statsCmd(open))
	return cmd
}

// withBackend runs fn with a connected backend and a signal-aware context.
func withBackend(cmd *cobra.Command, open connectFunc, fn func(ctx context.Context, b *backend) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := open(ctx)
	if err != nil {
		return err
	}
	defer b.close()
	return fn(ctx, b)
}

func setRoleCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <username> <citizen|official|admin>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				return setRole(ctx, b.Store, cmd.OutOrStdout(), args[0], args[1])
			})
		},
	}
}

func setStatusCmd(open connectFunc) *cobra.Command {
	var note, as string

	cmd := &cobra.Command{
		Use:   "set-status <report_number> <status>",
		Short: "Move a report through the workflow",
		Long: `Move a report to a new status, recording an official status-change entry
attributed to the staff account given with --as.

Examples:
  admin set-status CP-000042 in_progress --as alice
  admin set-status CP-000042 resolved --as alice --note "Patched on Monday"
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				return setStatus(ctx, b.Store, b.Events, cmd.OutOrStdout(), statusChange{
					Number: args[0],
					Status: args[1],
					Note:   note,
					As:     as,
				})
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Message recorded with the status change")
	cmd.Flags().StringVar(&as, "as", "", "Username of the staff account making the change")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func statsCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b *backend) error {
				return printStats(ctx, b.Store, cmd.OutOrStdout())
			})
		},
	}
}
