package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTaskCommand creates the task command group.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Submit and run async catalog tasks",
	}
	cmd.AddCommand(newTaskSubmitCommand(rootOpts))
	cmd.AddCommand(newTaskRunCommand(rootOpts))
	return cmd
}

func newTaskSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		taskType string
		project  string
		user     string
		config   string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Persist a task in SUBMITTED state",
		Example: `  camtrap task submit --type UpdateSerialNumber --project sci_0001 --user carla \
      --config '{"cameraId":"CT-042","newId":"CT-051"}'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg map[string]any
			if err := json.Unmarshal([]byte(config), &cfg); err != nil {
				return fmt.Errorf("invalid --config JSON: %w", err)
			}
			if _, ok := cfg["projectId"]; !ok {
				cfg["projectId"] = project
			}

			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			t, err := svc.SubmitTask(cmd.Context(), taskType, project, user, cfg)
			if err != nil {
				return err
			}
			return printTask(cmd.OutOrStdout(), rootOpts.Format, t)
		},
	}
	cmd.Flags().StringVar(&taskType, "type", "", "task type")
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&user, "user", "", "submitting user")
	cmd.Flags().StringVar(&config, "config", "{}", "workflow input as JSON")
	for _, f := range []string{"type", "project", "user"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newTaskRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task-id>",
		Short: "Run one submitted task to completion",
		Long: `Run a submitted task: SUBMITTED becomes RUNNING, the workflow
executes, and the task ends COMPLETE or FAIL with the outcome recorded
in its output field. Delivery is the caller's problem; running is
idempotent in that a task can only leave SUBMITTED once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore()

			t, runErr := svc.RunTask(cmd.Context(), args[0])
			if t != nil {
				if err := printTask(cmd.OutOrStdout(), rootOpts.Format, t); err != nil {
					return err
				}
			}
			return runErr
		},
	}
}
