package main

import (
	"fmt"
	"os"

	"github.com/go-sod/smote/internal/buildinfo"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), buildinfo.Graffiti)
			_, _ = fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s: %s, %s\n",
				buildinfo.Info.Name(),
				buildinfo.Info.Time(),
				buildinfo.Info.Tag(),
			)
		},
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smote",
		Short:         "oversample the minority class of a CSV dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(balanceCmd(), versionCmd())
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "smote: %v\n", err)
		os.Exit(1)
	}
}
