package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	startName        string
	startEmail       string
	startCrn         string
	startCredentials []string
)

func init() {
	startCmd.Flags().StringVar(&startName, "name", "", "who the monitor belongs to")
	startCmd.Flags().StringVar(&startEmail, "email", "", "where to send the seat notification")
	startCmd.Flags().StringVar(&startCrn, "crn", "", "course reference number to watch")
	startCmd.Flags().StringArrayVar(
		&startCredentials, "cookie", nil,
		"session cookie as NAME=VALUE, repeat for each cookie",
	)
	startCmd.MarkFlagRequired("name")
	startCmd.MarkFlagRequired("email")
	startCmd.MarkFlagRequired("crn")
	startCmd.MarkFlagRequired("cookie")

	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts watching a course for open seats.",
	Run: func(cmd *cobra.Command, args []string) {
		credentials := map[string]string{}
		for _, pair := range startCredentials {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				fail(fmt.Errorf("cookie %q is not in NAME=VALUE form", pair))
			}
			credentials[name] = value
		}

		var created struct {
			Id string `json:"id"`
		}
		res, err := client.R().
			SetContext(cmd.Context()).
			SetBody(map[string]any{
				"name":        startName,
				"email":       startEmail,
				"crn":         startCrn,
				"credentials": credentials,
			}).
			SetResult(&created).
			Post("/api/monitors")
		if err != nil {
			fail(err)
		}
		if res.IsError() {
			failStatus(res)
		}

		fmt.Println(created.Id)
	},
}
