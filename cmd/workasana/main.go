package main

import (
	"os"

	"github.com/DevN0mad/Workasana/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
