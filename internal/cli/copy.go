package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/orderdesk/internal/config"
	"github.com/fastygo/orderdesk/internal/snapshot"
)

// CopyResult reports what the copy command wrote.
type CopyResult struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Orders     int    `json:"orders"`
	Influences int    `json:"influences"`
}

// NewCopyCommand creates the copy command.
func NewCopyCommand(rootOpts *RootOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "copy --to <driver>",
		Short: "Copy both tables from the configured sink to another driver",
		Long: `Load both tables from the source sink and replace the tables of the
destination sink with them. Destination settings come from the usual
environment variables (SQLITE_PATH, BOLTDB_PATH, DATABASE_URL, ...).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(rootOpts, to, cmd)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination storage driver")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runCopy(opts *RootOptions, to string, cmd *cobra.Command) error {
	if !config.ValidDriver(to) {
		return fmt.Errorf("invalid destination driver %q: must be one of %v", to, config.Drivers)
	}

	src, err := opts.load(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	if src.cfg.Storage.Driver == to {
		return fmt.Errorf("source and destination are both %q", to)
	}

	dstCfg, err := opts.loadConfig(to)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.newLogger(cmd)

	dst, err := opts.open(ctx, dstCfg, log)
	if err != nil {
		return err
	}
	defer dst.Close()

	tables := snapshot.Bind(dst, src.orders, src.influences, log)
	result := CopyResult{From: src.cfg.Storage.Driver, To: to}
	if result.Orders, err = tables.Orders.Save(ctx); err != nil {
		return fmt.Errorf("copy orders: %w", err)
	}
	if result.Influences, err = tables.Influences.Save(ctx); err != nil {
		return fmt.Errorf("copy influences: %w", err)
	}

	return encode(cmd.OutOrStdout(), "json", result)
}
