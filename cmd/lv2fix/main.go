package main

import (
	"os"

	"lv2fix/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
