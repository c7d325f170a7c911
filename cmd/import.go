package cmd

import (
	"github.com/gaurav-prasanna/readmate/core"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <url>",
	Short: "Import a web article into the library",
	Long: `Import fetches a web page, extracts its readable article, lays it out as a
paginated PDF and adds it to the library.

A URL without a scheme is treated as https. The import gives up after the
web import timeout (30s by default) and leaves nothing behind when it fails
or is interrupted.

Examples:
  readmate import https://example.com/posts/hello
  readmate import example.com/posts/hello --catalog sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	coordinator, closeCatalog, err := newCoordinator(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeCatalog()

	res, err := coordinator.Import(cmd.Context(), core.WebURL{URL: args[0]}, progress(cmd.ErrOrStderr()))
	if err != nil {
		return userError(err)
	}
	printResult(cmd.OutOrStdout(), res, cfg.DocumentsDir)
	return nil
}
