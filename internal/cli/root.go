package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/internal/config"
	"github.com/fastygo/orderdesk/internal/infrastructure/storage"
	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/internal/snapshot"
	"github.com/fastygo/orderdesk/pkg/logger"
	"github.com/fastygo/orderdesk/repository"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Driver  string
	Verbose bool

	// open is replaced in tests.
	open func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Sink, error)
}

// NewRootCommand creates the root command for the orderdesk admin tool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{open: storage.Open}

	cmd := &cobra.Command{
		Use:   "orderdeskctl",
		Short: "Inspect and move orderdesk snapshots",
		Long: `Offline tooling for the orderdesk record tables.

Reads the storage settings from the same environment variables as the
server. Run it while the server is stopped, or against a copy.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Driver != "" && !config.ValidDriver(opts.Driver) {
				return fmt.Errorf("invalid driver %q: must be one of %v", opts.Driver, config.Drivers)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "source storage driver (defaults to STORAGE_DRIVER)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewCopyCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// dataset is the loaded content of one sink.
type dataset struct {
	cfg        *config.Config
	sink       repository.Sink
	orders     *records.Store[*domain.Order]
	influences *records.Store[*domain.InfluenceEvent]
}

func (d *dataset) Close() error { return d.sink.Close() }

func (opts *RootOptions) newLogger(cmd *cobra.Command) *zap.Logger {
	if !opts.Verbose {
		return zap.NewNop()
	}
	log, err := logger.New(logger.Config{Level: "debug", Encoding: "console", Output: stderrSyncer(cmd)})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (opts *RootOptions) loadConfig(driver string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if driver != "" {
		cfg.Storage.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// load opens the source sink and reads both tables into memory.
func (opts *RootOptions) load(cmd *cobra.Command) (*dataset, error) {
	cfg, err := opts.loadConfig(opts.Driver)
	if err != nil {
		return nil, err
	}
	log := opts.newLogger(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sink, err := opts.open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	d := &dataset{
		cfg:        cfg,
		sink:       sink,
		orders:     records.New[*domain.Order](),
		influences: records.New[*domain.InfluenceEvent](),
	}
	tables := snapshot.Bind(sink, d.orders, d.influences, log)
	if _, err := tables.Orders.Load(ctx); err != nil {
		_ = sink.Close()
		return nil, err
	}
	if _, err := tables.Influences.Load(ctx); err != nil {
		_ = sink.Close()
		return nil, err
	}
	return d, nil
}
