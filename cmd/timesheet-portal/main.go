package main

import (
	"os"

	"Mansoor88-6/timesheet-portal/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
