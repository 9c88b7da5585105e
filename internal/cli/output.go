package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// printConfig writes a camera config in the selected format.
func printConfig(w io.Writer, format string, cfg *model.CameraConfig) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	fmt.Fprintf(w, "camera %s (%d deployments)\n", cfg.ID, len(cfg.Deployments))
	for _, d := range cfg.Deployments {
		start := "-"
		if d.StartDate != nil {
			start = d.StartDate.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "  %-24s %-28s start=%s tz=%s\n", d.Name, d.ID, start, d.Timezone)
	}
	return nil
}

// printTask writes a task record in the selected format.
func printTask(w io.Writer, format string, t *model.Task) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	}
	fmt.Fprintf(w, "task %s type=%s status=%s\n", t.ID, t.Type, t.Status)
	if t.Output != "" {
		fmt.Fprintf(w, "  output: %s\n", t.Output)
	}
	return nil
}
