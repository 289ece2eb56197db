// Command gnote scans local documents for headings, tasks and tags.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gnote",
		Short:   "gnote - task and tag scanner for notes",
		Version: Version,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.SilenceUsage = true
	return rootCmd
}

func logger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
