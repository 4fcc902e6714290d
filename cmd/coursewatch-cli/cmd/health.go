package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Prints the daemon's health report.",
	Run: func(cmd *cobra.Command, args []string) {
		var health struct {
			EmailCapabilityReady bool  `json:"emailCapabilityReady"`
			ActiveMonitorCount   int   `json:"activeMonitorCount"`
			UptimeSeconds        int64 `json:"uptimeSeconds"`
		}
		res, err := client.R().
			SetContext(cmd.Context()).
			SetResult(&health).
			Get("/api/health")
		if err != nil {
			fail(err)
		}
		if res.IsError() {
			failStatus(res)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRows([]table.Row{
			{"Email Ready", health.EmailCapabilityReady},
			{"Active Monitors", health.ActiveMonitorCount},
			{"Uptime (s)", health.UptimeSeconds},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
