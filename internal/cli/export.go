package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/orderdesk/domain"
)

// Export is the document written by the export command.
type Export struct {
	Driver     string                   `json:"driver" yaml:"driver"`
	Orders     []*domain.Order          `json:"orders" yaml:"orders"`
	Influences []*domain.InfluenceEvent `json:"influences" yaml:"influences"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every stored order and influence event",
		Long: `Load both tables from the configured sink and print them, newest
first, as JSON or YAML.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(format) {
				return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			return encode(cmd.OutOrStdout(), format, Export{
				Driver:     d.sink.Driver(),
				Orders:     d.orders.ListAll(),
				Influences: d.influences.ListAll(),
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")

	return cmd
}
