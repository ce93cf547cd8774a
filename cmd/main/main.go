package main

import (
	"context"
	"fmt"
	"os"

	"github.com/j0lvera/kibo/internal/cli"
)

func main() {
	if err := cli.NewRoot().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
