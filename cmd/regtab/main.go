package main

import (
	"os"

	"github.com/regtab/regtab/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
