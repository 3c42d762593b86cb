package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagegate/internal/config"
)

//go:embed templates/pagegate.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pagegate configuration file",
		Long: `Initialize creates a new .pagegate configuration file in the current directory.

The generated file lists every setting with its default value:
- Crawl scope: allowed domains, URL length limit, extra trap rules
- Similarity: shingle size, Hamming threshold, hash function
- Admission: size ceiling, text density, minimum word count
- Report: number of top words and output format

Examples:
  # Create .pagegate in current directory
  pagegate init

  # Create config file at a specific path
  pagegate init -o myconfig.yaml

  # Force overwrite existing file
  pagegate init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/pagegate.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to tune the filter, for example:")
	fmt.Fprintln(out, "  - Domains whose links may be queued")
	fmt.Fprintln(out, "  - Trap rules for calendars and archives on your site")
	fmt.Fprintln(out, "  - The near-duplicate threshold")

	return nil
}
