package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(testEmailCmd)
}

var testEmailCmd = &cobra.Command{
	Use:   "send-test-email <address>",
	Short: "Asks the daemon to send a test email to verify smtp delivery.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := client.R().
			SetContext(cmd.Context()).
			SetBody(map[string]string{"to": args[0]}).
			Post("/api/test-email")
		if err != nil {
			fail(err)
		}
		if res.IsError() {
			failStatus(res)
		}

		fmt.Println("test email sent to", args[0])
	},
}
