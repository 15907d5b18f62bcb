package main

import (
	"context"
	"fmt"
	"os"

	"github.com/taoyao-code/timebox/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand(os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
