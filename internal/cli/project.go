package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildeye/camtrap/internal/catalog"
	"github.com/wildeye/camtrap/internal/schema"
	"github.com/wildeye/camtrap/internal/store"
)

// NewProjectCommand creates the project command group.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectImportCommand(rootOpts))
	return cmd
}

func newProjectImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Import a project from a seed file",
		Long: `Validate a YAML project seed against the project schema and insert
it into the catalog. Fails if a project with the same id exists.

Example:
  camtrap project import ./seeds/sci-biosecurity.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := schema.LoadSeed(args[0], catalog.UUIDv7Generator{})
			if err != nil {
				return err
			}

			st, err := store.Open(rootOpts.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.CreateProject(cmd.Context(), proj); err != nil {
				return fmt.Errorf("importing project %s: %w", proj.ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported project %s (%d cameras, %d views)\n",
				proj.ID, len(proj.CameraConfigs), len(proj.Views))
			return nil
		},
	}
}
