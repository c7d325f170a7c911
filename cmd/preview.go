package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/gaurav-prasanna/readmate/core/normalize"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <url>",
	Short: "Show the readable article of a web page as Markdown",
	Long: `Preview fetches a web page and prints the article Readmate would import,
as Markdown, without storing anything.

Examples:
  readmate preview https://example.com/posts/hello`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	u, err := core.ParseWebURL(args[0])
	if err != nil {
		return userError(err)
	}

	// 1. Fetch
	result, err := newFetcher(cfg, logger).Fetch(ctx, u.String())
	if err != nil {
		return userError(err)
	}

	// 2. Extract main content
	content, err := newExtractor(cfg, logger).Extract(ctx, result.Body)
	if err != nil {
		return userError(err)
	}
	if content.Title == "" {
		content.Title = u.Hostname()
	}

	// 3. Normalize to Markdown
	fmt.Fprint(cmd.OutOrStdout(), normalize.New().Preview(content))
	return nil
}
