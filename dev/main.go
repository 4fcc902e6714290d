package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"coursewatch-backend/lib/snapstore/db"

	_ "modernc.org/sqlite"
)

const exampleConfig = `{
	base_url: "https://ban9ssb-prod.mtroyal.ca",
	term: "202601",
	// "json" or "html", depending on what the portal serves
	format: "json",
	database: {
		file: "dev/.state/coursewatch.db",
	},
	smtp: {
		server: "smtp.gmail.com",
		port: 587,
		email_address: "",
		password: "",
	},
	check_interval: 10,
	port: 8544,
	verbose: true,
}
`

func createDb(filename, schema string) error {
	_, err := os.Stat(filename)
	if err == nil {
		fmt.Println("database already created at", filename)
		return nil
	}

	fmt.Println("creating database at", filename)
	database, err := sql.Open("sqlite", filename)
	if err != nil {
		return err
	}
	defer database.Close()
	_, err = database.Exec(schema)
	return err
}

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	err = createDb("dev/.state/coursewatch.db", db.Schema)
	if err != nil {
		return err
	}

	_, err = os.Stat("config.json5")
	if os.IsNotExist(err) {
		fmt.Println("writing example config to config.json5")
		err = os.WriteFile("config.json5", []byte(exampleConfig), 0666)
		if err != nil {
			return err
		}
	}

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created successfully!")
}
