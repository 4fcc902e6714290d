package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stopCmd)
}

var stopCmd = &cobra.Command{
	Use:   "stop <monitor id>",
	Short: "Stops a running monitor.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := client.R().
			SetContext(cmd.Context()).
			Delete("/api/monitors/" + args[0])
		if err != nil {
			fail(err)
		}
		if res.IsError() {
			failStatus(res)
		}

		fmt.Println("stopped", args[0])
	},
}
