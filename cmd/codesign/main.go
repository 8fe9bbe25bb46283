package main

import (
	"os"

	"github.com/samvdst/codesign/cli"
)

func main() {
	if len(os.Args) < 2 {
		cli.Usage()
		return
	}

	switch os.Args[1] {
	case "verify":
		cli.VerifyCommand()
	case "inspect":
		cli.InspectCommand()
	default:
		cli.Usage()
	}
}
