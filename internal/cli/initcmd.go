package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildeye/camtrap/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the catalog database",
		Long: `Create the catalog database at --db, or migrate an existing one
to the current schema version. Idempotent.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(rootOpts.DBPath)
			if err != nil {
				return err
			}
			if err := st.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog database ready: %s\n", rootOpts.DBPath)
			return nil
		},
	}
}
