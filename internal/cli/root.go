package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pg2duck",
	Short: "Copy PostgreSQL tables to Parquet and load them into DuckDB",
	Long: `pg2duck moves PostgreSQL tables into an embedded DuckDB database in two
stages:

  extract  copies every table returned by a catalog query into
           <output_directory>/<schema>.<table>/ as Parquet files, casting or
           dropping columns by data type
  load     creates or replaces one DuckDB table per <schema>.<table>
           directory

Tables the engine cannot convert or read are skipped with a warning; the
rest of the run continues.

Exit Codes:
  0  - Success (individual tables may have been skipped)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or table directory name
  11 - Database connection or authentication failed
  12 - Output directory is not a directory or not empty
  13 - Catalog query or engine statement failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is --host, as in psql
	rootCmd.PersistentFlags().Bool("help", false, "Help for pg2duck")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// interruptibleContext returns a context cancelled on Ctrl+C or SIGTERM.
// The running stage stops before its next statement.
func interruptibleContext(stage string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling %s...\n", stage)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
