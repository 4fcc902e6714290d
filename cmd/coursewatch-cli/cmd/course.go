package cmd

import (
	"fmt"
	"os"
	"time"

	"coursewatch-backend/lib/scrapers/banner"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(courseCmd)
}

var courseCmd = &cobra.Command{
	Use:   "course <crn>",
	Short: "Prints the latest stored availability snapshot for a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var snapshot banner.Snapshot
		res, err := client.R().
			SetContext(cmd.Context()).
			SetResult(&snapshot).
			Get("/api/courses/" + args[0])
		if err != nil {
			fail(err)
		}
		if res.IsError() {
			failStatus(res)
		}

		if snapshot.Error != "" {
			fmt.Fprintln(os.Stderr, "warning:", snapshot.Error)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRows([]table.Row{
			{"CRN", snapshot.CRN},
			{"Course", snapshot.CourseCode},
			{"Title", snapshot.Title},
			{"Status", snapshot.Status()},
			{"Seats Available", snapshot.SeatsAvailable},
			{"Enrollment", snapshot.Enrollment},
			{"Maximum Enrollment", snapshot.MaximumEnrollment},
			{"Waitlist Available", snapshot.WaitAvailable},
			{"Instructor", snapshot.Instructor},
			{"Checked At", snapshot.Time.Format(time.RFC1123)},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
