package cmd

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var BaseUrl string

var client *resty.Client

var rootCmd = &cobra.Command{
	Use:   "coursewatch-cli",
	Short: "coursewatch-cli is a CLI interface for the coursewatch seat monitoring daemon.",
}

func Execute() {
	client = resty.New().SetBaseURL(BaseUrl)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

func failStatus(res *resty.Response) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", res.Status(), string(res.Body()))
	os.Exit(1)
}
