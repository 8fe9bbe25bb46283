package cli

import (
	"fmt"
	"os"
)

var osExit = os.Exit

func Usage() {
	fmt.Printf("Usage: %s <command> [options] <args>\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  verify   Verify the code signature of a binary or running process")
	fmt.Println("  inspect  Show the embedded signature of a binary without a trust check")
	fmt.Println("")
	fmt.Printf("Use '%s <command> -h' for command-specific help\n", os.Args[0])
	osExit(1)
}
