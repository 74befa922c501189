package main

import (
	"os"

	"github.com/dshills/mythra/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
