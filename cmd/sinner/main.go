package main

import (
	"os"

	"github.com/sinner-cli/sinner/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
