package main

import (
	"fmt"
	"os"

	"coursewatch-backend/cmd/coursewatch-cli/cmd"
)

func main() {
	baseUrl, ok := os.LookupEnv("COURSEWATCH_BASE_URL")
	if !ok {
		fmt.Println("You should specify the base url of the coursewatch daemon in the environment variable COURSEWATCH_BASE_URL.")
		os.Exit(1)
	}
	cmd.BaseUrl = baseUrl

	cmd.Execute()
}
