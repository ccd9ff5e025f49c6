// Package cli wires the packpipe commands. Every command builds its own
// registry/loader/pipeline stack and runs against an injected filesystem so
// the command logic is testable without touching the host disk.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"packpipe/pkg/logger"
)

// NewRootCommand assembles the packpipe command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	logConfig := &logger.Config{}
	cmd := &cobra.Command{
		Use:           "packpipe",
		Short:         "compress, archive and restore file sets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	logConfig.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewCompressCommand(ctx, logConfig))
	cmd.AddCommand(NewDecompressCommand(ctx, logConfig))
	cmd.AddCommand(NewInspectCommand(ctx, logConfig))
	return cmd
}

// fatal prints an error with its contextual hint and exits non-zero.
func fatal(err error, hintText string) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if hintText != "" {
		fmt.Fprintln(os.Stderr, "Hint:", hintText)
	}
	os.Exit(1)
}
