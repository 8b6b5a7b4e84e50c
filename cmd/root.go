// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/naka-gawa/github-report/internal/config"
	"github.com/naka-gawa/github-report/internal/dataset"
	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/render"
	"github.com/naka-gawa/github-report/internal/usecase"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-report",
	Short: "A reporting dashboard over a dataset of GitHub repositories.",
	Long: `github-report loads a CSV dataset of GitHub repositories and presents
activity, contributor and feature analyses as charts with commentary.
Serve them as a web dashboard, write them to a directory, or print the
top repositories in the terminal.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (default ./ghreport.yaml if present)")
	rootCmd.PersistentFlags().StringP("dataset", "d", "", "Path to the dataset CSV (overrides dataset_path)")
}

// newLogger discards everything unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// loadConfig applies the command line overrides on top of the loaded config.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		exitWithError("failed to load config: %v", err)
	}
	if path, _ := cmd.Flags().GetString("dataset"); path != "" {
		cfg.DatasetPath = path
	}
	return cfg
}

// loadReporter loads the dataset once; a load failure is fatal.
func loadReporter(cfg *config.Config, logger *log.Logger) *usecase.Reporter {
	logger.Printf("Loading dataset %s...", cfg.DatasetPath)
	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		exitWithError("%v", err)
	}
	logger.Printf("Loaded %d records.", len(ds))
	renderer := render.NewPNGRenderer(cfg.ChartWidth, cfg.ChartHeight)
	return usecase.NewReporter(ds, renderer, logger, usecase.Options{TopN: cfg.TopN, HistogramBins: cfg.HistogramBins})
}

func parseCategory(s string) domain.Field {
	category, err := domain.ParseField(s)
	if err != nil {
		exitWithError("%v", err)
	}
	return category
}

func exitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
