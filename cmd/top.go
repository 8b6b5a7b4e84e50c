package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/usecase"
	"github.com/spf13/cobra"
)

var topCmd = &cobra.Command{
	Use:   "top [category]",
	Short: "Print the top repositories for a category",
	Long: `Print the top repositories ranked by a category, largest first.
The category is one of stars, forks, issues, pull_requests, contributors
or language (default stars). For language the most used languages are listed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)
		if n, _ := cmd.Flags().GetInt("number"); n > 0 {
			cfg.TopN = n
		}
		category := domain.FieldStars
		if len(args) == 1 {
			category = parseCategory(args[0])
		}

		sel, err := loadReporter(cfg, logger).Top(category)
		if err != nil {
			exitWithError("%v", err)
		}
		printTop(cmd.OutOrStdout(), sel)
	},
}

// printTop writes the selection largest first.
func printTop(w io.Writer, sel usecase.Selection) {
	bold := color.New(color.Bold)
	value := color.New(color.FgCyan)

	if sel.Category == domain.FieldLanguage {
		bold.Fprintf(w, "%-4s %-30s %10s\n", "#", "LANGUAGE", "COUNT")
		fmt.Fprintln(w, strings.Repeat("-", 46))
		for i := len(sel.Languages) - 1; i >= 0; i-- {
			c := sel.Languages[i]
			fmt.Fprintf(w, "%-4d %-30s ", len(sel.Languages)-i, c.Value)
			value.Fprintf(w, "%10d\n", c.Count)
		}
		return
	}

	bold.Fprintf(w, "%-4s %-40s %10s\n", "#", "REPOSITORY", strings.ToUpper(sel.Category.Label()))
	fmt.Fprintln(w, strings.Repeat("-", 56))
	for i := len(sel.Records) - 1; i >= 0; i-- {
		r := sel.Records[i]
		fmt.Fprintf(w, "%-4d %-40s ", len(sel.Records)-i, r.Name)
		value.Fprintf(w, "%10.0f\n", r.Value(sel.Category))
	}
}

func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().IntP("number", "n", 0, "Number of entries (overrides top_n)")
}
