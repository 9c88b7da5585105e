package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildeye/camtrap/internal/catalog"
)

// NewCameraCommand creates the camera command group.
func NewCameraCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "camera",
		Short: "Manage camera identities and registrations",
	}
	cmd.AddCommand(newCameraRegisterCommand(rootOpts))
	cmd.AddCommand(newCameraUnregisterCommand(rootOpts))
	cmd.AddCommand(newCameraUpdateSerialCommand(rootOpts))
	return cmd
}

func newCameraRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project string
		camera  string
		make_   string
	)
	cmd := &cobra.Command{
		Use:           "register",
		Short:         "Register a wireless camera to a project",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := svc.RegisterCamera(cmd.Context(), catalog.RegisterCameraInput{
				ProjectID: project,
				CameraID:  camera,
				Make:      make_,
			})
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), rootOpts.Format, cfg)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&camera, "camera", "", "camera serial number")
	cmd.Flags().StringVar(&make_, "make", "", "camera make")
	for _, f := range []string{"project", "camera"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newCameraUnregisterCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project string
		camera  string
	)
	cmd := &cobra.Command{
		Use:           "unregister",
		Short:         "Release a wireless camera from a project",
		Long:          "Deactivate the camera's registration to the project. The camera falls back to the default project; registrations are never deleted.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := svc.UnregisterCamera(cmd.Context(), catalog.UnregisterCameraInput{
				ProjectID: project,
				CameraID:  camera,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "camera %s released from %s\n", camera, project)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&camera, "camera", "", "camera serial number")
	for _, f := range []string{"project", "camera"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newCameraUpdateSerialCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		project string
		camera  string
		newID   string
	)
	cmd := &cobra.Command{
		Use:   "update-serial",
		Short: "Rename a camera's serial number, merging on collision",
		Long: `Rename a camera's serial number within a project. If the new serial
already names a camera in the project, the source camera is merged into
it: its images are relabeled and re-mapped onto the target's deployment
windows, and its config is removed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := svc.UpdateCameraSerialNumber(cmd.Context(), catalog.UpdateSerialNumberInput{
				ProjectID: project,
				CameraID:  camera,
				NewID:     newID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&camera, "camera", "", "current camera serial number")
	cmd.Flags().StringVar(&newID, "new-id", "", "new camera serial number")
	for _, f := range []string{"project", "camera", "new-id"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}
