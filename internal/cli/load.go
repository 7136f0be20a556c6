package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pg2duck/internal/config"
	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/logging"
	"github.com/vvka-141/pg2duck/internal/services"
	"github.com/vvka-141/pg2duck/internal/tui"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load <schema>.<table> Parquet directories into a DuckDB database",
	Long: `Load opens (or creates) the DuckDB database and, for every <schema>.<table>
directory directly under the input directory, creates the schema if needed
and replaces the table with the contents of its Parquet files.

Files under the input directory are ignored. A directory name without
exactly one '.' fails the whole run before any table is touched. A
directory whose Parquet files cannot be read is skipped with a warning and
the existing table, if any, is left unchanged.

Examples:
  # Use ./paths.yaml
  pg2duck load

  # Without a configuration file
  pg2duck load --input parquet --duckdb DuckDB/warehouse.duckdb`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

type loadFlagValues struct {
	configPath, input, duckdb string
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVarP(&loadFlags.configPath, "config", "c", pg2duck.DefaultLoadConfigFile,
		"Load configuration file (optional when --input and --duckdb are given)")
	loadCmd.Flags().StringVar(&loadFlags.input, "input", "",
		"Directory holding the <schema>.<table> directories (overrides input_directory_parquet_files)")
	loadCmd.Flags().StringVar(&loadFlags.duckdb, "duckdb", "",
		"DuckDB database file, created if missing (overrides duckdb_database_path)")

	_ = loadCmd.RegisterFlagCompletionFunc("input", completeDirectories)
}

// buildLoadConfig reads the paths file and applies flag overrides. The file
// may be absent when both paths are given as flags.
func buildLoadConfig() (pg2duck.LoadConfig, error) {
	file, err := config.LoadPaths(loadFlags.configPath)
	if errors.Is(err, config.ErrConfigNotFound) && loadFlags.input != "" && loadFlags.duckdb != "" {
		file, err = &config.PathsFile{}, nil
	}
	if err != nil {
		return pg2duck.LoadConfig{}, fmt.Errorf("failed to load %s: %w", loadFlags.configPath, err)
	}

	cfg := pg2duck.LoadConfig{
		InputDir:     file.InputDirectory,
		DatabasePath: file.DuckDBPath,
	}
	if loadFlags.input != "" {
		cfg.InputDir = loadFlags.input
	}
	if loadFlags.duckdb != "" {
		cfg.DatabasePath = loadFlags.duckdb
	}
	return cfg, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	config, err := buildLoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := interruptibleContext("load")
	defer cancel()

	loader := services.NewLoadService(filesystem.NewOSFileSystem(), logger)
	report, err := loader.Load(ctx, config)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if tui.IsInteractive() {
		fmt.Fprintln(os.Stderr, tui.RenderLoadSummary(report))
	}
	return nil
}
