package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildeye/camtrap/internal/catalog"
)

// NewDeploymentCommand creates the deployment command group. Every
// subcommand re-maps the camera's images as part of the operation, so
// runtime scales with the camera's image count.
func NewDeploymentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Manage deployment windows",
	}
	cmd.AddCommand(newDeploymentCreateCommand(rootOpts))
	cmd.AddCommand(newDeploymentUpdateCommand(rootOpts))
	cmd.AddCommand(newDeploymentDeleteCommand(rootOpts))
	return cmd
}

func newDeploymentCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project  string
		camera   string
		name     string
		timezone string
		start    string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a dated deployment window to a camera",
		Example: `  camtrap deployment create --project sci_0001 --camera CT-042 \
      --name "ridge north" --timezone America/Los_Angeles --start 2023-06-01T00:00:00Z`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start (want RFC 3339): %w", err)
			}
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := svc.CreateDeployment(cmd.Context(), catalog.CreateDeploymentInput{
				ProjectID: project,
				CameraID:  camera,
				Name:      name,
				Timezone:  timezone,
				StartDate: startDate,
			})
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), rootOpts.Format, cfg)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&camera, "camera", "", "camera id")
	cmd.Flags().StringVar(&name, "name", "", "deployment name")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the placement")
	cmd.Flags().StringVar(&start, "start", "", "window start (RFC 3339)")
	for _, f := range []string{"project", "camera", "name", "timezone", "start"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newDeploymentUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project    string
		camera     string
		deployment string
		name       string
		timezone   string
		start      string
	)
	cmd := &cobra.Command{
		Use:           "update",
		Short:         "Edit a deployment window",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := catalog.UpdateDeploymentInput{
				ProjectID:    project,
				CameraID:     camera,
				DeploymentID: deployment,
			}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("timezone") {
				in.Timezone = &timezone
			}
			if cmd.Flags().Changed("start") {
				startDate, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start (want RFC 3339): %w", err)
				}
				in.StartDate = &startDate
			}

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := svc.UpdateDeployment(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), rootOpts.Format, cfg)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&camera, "camera", "", "camera id")
	cmd.Flags().StringVar(&deployment, "deployment", "", "deployment id")
	cmd.Flags().StringVar(&name, "name", "", "new deployment name")
	cmd.Flags().StringVar(&timezone, "timezone", "", "new IANA timezone")
	cmd.Flags().StringVar(&start, "start", "", "new window start (RFC 3339)")
	for _, f := range []string{"project", "camera", "deployment"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newDeploymentDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project    string
		camera     string
		deployment string
	)
	cmd := &cobra.Command{
		Use:           "delete",
		Short:         "Delete a deployment window",
		Long:          "Delete a dated deployment window. Images it owned are re-assigned to whichever remaining window covers them, falling back to default.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := svc.DeleteDeployment(cmd.Context(), catalog.DeleteDeploymentInput{
				ProjectID:    project,
				CameraID:     camera,
				DeploymentID: deployment,
			})
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), rootOpts.Format, cfg)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&camera, "camera", "", "camera id")
	cmd.Flags().StringVar(&deployment, "deployment", "", "deployment id")
	for _, f := range []string{"project", "camera", "deployment"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}
