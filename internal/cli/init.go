package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/logging"
	"github.com/vvka-141/pg2duck/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [target_path]",
	Short: "Create a starter pg2duck configuration",
	Long: `Init writes parameters.yml, paths.yaml and fetch_tables_to_extract.sql into
the target directory (default: current directory).

Target directory must be empty or non-existent.

Examples:
  pg2duck init              # Initialize in current directory
  pg2duck init ./warehouse  # Initialize in ./warehouse`,
	Args:              RequireAtMostOneDirectory,
	ValidArgsFunction: completeDirectories,
	RunE:              runInit,
}

var initTemplate string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initTemplate, "template", "t", scaffold.DefaultTemplate, "Template to use")
	_ = initCmd.RegisterFlagCompletionFunc("template", completeTemplateNames)
}

// RequireAtMostOneDirectory accepts zero or one target directory.
func RequireAtMostOneDirectory(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf(`accepts at most 1 arg(s), received %d

Usage: %s

Example:
  %s ./warehouse`, len(args), cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	scaffolder := scaffold.NewScaffolder(filesystem.NewOSFileSystem(), logger)

	created, err := scaffolder.CreateProject(initTemplate, target)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	fmt.Fprintf(os.Stderr, "Created pg2duck configuration in %s\n", abs)
	for _, name := range created {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Next steps:")
	fmt.Fprintln(os.Stderr, "  1. Edit parameters.yml with your database settings")
	fmt.Fprintln(os.Stderr, "  2. Adjust fetch_tables_to_extract.sql")
	fmt.Fprintln(os.Stderr, "  3. Run: pg2duck extract && pg2duck load")
	return nil
}
