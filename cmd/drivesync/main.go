package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"drivesync/internal/failure"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err != nil && !failure.Benign(err) && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(failure.ExitCode(err))
}
