package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/skillman/cmd/skillman"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/ui"
)

func main() {
	rootCmd := skillman.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		styles := ui.NewStyles(os.Stderr, ui.DetectFormat(os.Stderr) == ui.FormatTerminal)
		fmt.Fprintln(os.Stderr, styles.Error.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes user errors from failures.
func exitCode(err error) int {
	switch errors.GetErrorCode(err) {
	case errors.ErrInvalidInput, errors.ErrNotFound, errors.ErrRemoteNotFound:
		return 2
	default:
		return 1
	}
}
