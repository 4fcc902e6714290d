package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

type monitorInfo struct {
	Id               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	CRN              string    `json:"crn"`
	Status           string    `json:"status"`
	NotificationSent bool      `json:"notificationSent"`
	StartTime        time.Time `json:"startTime"`
	Checks           int       `json:"checks"`
	LastSeats        int       `json:"lastSeats"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the monitors known to the daemon.",
	Run: func(cmd *cobra.Command, args []string) {
		var monitors []monitorInfo
		res, err := client.R().
			SetContext(cmd.Context()).
			SetResult(&monitors).
			Get("/api/monitors")
		if err != nil {
			fail(err)
		}
		if res.IsError() {
			failStatus(res)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Id", "Name", "Email", "CRN", "Status", "Notified", "Checks", "Seats", "Started",
		})

		for _, m := range monitors {
			t.AppendRow(table.Row{
				m.Id, m.Name, m.Email, m.CRN, m.Status,
				m.NotificationSent, m.Checks, m.LastSeats,
				m.StartTime.Format(time.Kitchen),
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
