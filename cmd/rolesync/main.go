package main

import (
	"fmt"
	"os"

	"vn.io.arda/rolesync/cmd/rolesync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rolesync: %v\n", err)
		os.Exit(1)
	}
}
