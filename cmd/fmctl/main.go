package main

import (
	"os"

	"github.com/fmapi/firemon-api-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
