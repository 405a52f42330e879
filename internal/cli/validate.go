package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fastygo/orderdesk/internal/rules"
)

// Issue is one stored record that breaks a validation rule.
type Issue struct {
	Table   string `json:"table"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool    `json:"valid"`
	Orders     int     `json:"orders"`
	Influences int     `json:"influences"`
	Issues     []Issue `json:"issues,omitempty"`
}

// ErrInvalidRecords is returned when at least one stored record is invalid.
var ErrInvalidRecords = errors.New("stored records failed validation")

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var pricing bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check stored records against the field rules",
		Long: `Load both tables and run the same field rules the API applies to
updates. With --pricing, order totals are also checked against the price list.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			mode := rules.ModeUpdate
			if pricing {
				mode = rules.ModeCreate
			}

			result := ValidationResult{Valid: true}
			for _, o := range d.orders.ListAll() {
				result.Orders++
				if err := rules.ValidateOrder(o, mode); err != nil {
					result.Issues = append(result.Issues, Issue{Table: "orders", ID: o.CID, Message: err.Error()})
				}
			}
			for _, e := range d.influences.ListAll() {
				result.Influences++
				if err := rules.ValidateInfluence(e); err != nil {
					result.Issues = append(result.Issues, Issue{Table: "influences", ID: e.ID, Message: err.Error()})
				}
			}
			result.Valid = len(result.Issues) == 0

			if err := encode(cmd.OutOrStdout(), "json", result); err != nil {
				return err
			}
			if !result.Valid {
				return ErrInvalidRecords
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pricing, "pricing", false, "also check order totals against the price list")

	return cmd
}
