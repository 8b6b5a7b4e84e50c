package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/naka-gawa/github-report/internal/dataset"
	"github.com/naka-gawa/github-report/internal/gateway"
	"github.com/naka-gawa/github-report/internal/usecase"
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Build the dataset CSV from live GitHub data",
	Long: `Fetch stars, forks, issues, pull requests, contributors and primary
language for every repository listed in the input file (one owner/name per
line, blank lines and # comments ignored) and write them as the dataset CSV.
The token is read from github_token, GHREPORT_GITHUB_TOKEN or GITHUB_TOKEN.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)
		input, _ := cmd.Flags().GetString("input")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		f, err := os.Open(input)
		if err != nil {
			exitWithError("failed to open repository list: %v", err)
		}
		refs, err := readRefs(f)
		f.Close()
		if err != nil {
			exitWithError("%v", err)
		}
		if cfg.GitHubToken == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no GitHub token set, requests are unauthenticated.")
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, logger)
		if err != nil {
			exitWithError("failed to create GitHub gateway: %v", err)
		}
		ds, err := usecase.NewCollector(githubGateway, logger, concurrency).Collect(context.Background(), refs)
		if err != nil {
			exitWithError("failed to collect repositories: %v", err)
		}

		out, err := os.Create(cfg.DatasetPath)
		if err != nil {
			exitWithError("failed to create dataset: %v", err)
		}
		if err := dataset.Write(out, ds); err != nil {
			out.Close()
			exitWithError("failed to write dataset: %v", err)
		}
		if err := out.Close(); err != nil {
			exitWithError("failed to write dataset: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d repositories to %s\n", len(ds), cfg.DatasetPath)
	},
}

// readRefs parses one owner/name per line.
func readRefs(r io.Reader) ([]usecase.RepositoryRef, error) {
	var refs []usecase.RepositoryRef
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ref, err := usecase.ParseRepositoryRef(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		refs = append(refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read repository list: %w", err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("repository list is empty")
	}
	return refs, nil
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringP("input", "i", "", "File listing owner/name repositories (required)")
	collectCmd.Flags().Int("concurrency", usecase.DefaultConcurrency, "Number of repositories fetched at once")
	collectCmd.MarkFlagRequired("input")
}
