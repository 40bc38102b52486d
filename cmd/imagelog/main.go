package main

import (
	"os"

	"github.com/ariel-frischer/imagelog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
