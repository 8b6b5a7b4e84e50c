package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/naka-gawa/github-report/internal/render"
	"github.com/naka-gawa/github-report/internal/usecase"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// manifestName is the index written next to the chart images.
const manifestName = "report.yaml"

type manifest struct {
	Introduction string            `yaml:"introduction"`
	Sections     []manifestSection `yaml:"sections"`
}

type manifestSection struct {
	Name              string          `yaml:"name"`
	Title             string          `yaml:"title"`
	Category          string          `yaml:"category,omitempty"`
	TotalContributors int             `yaml:"total_contributors,omitempty"`
	Charts            []manifestChart `yaml:"charts"`
}

type manifestChart struct {
	render.Artifact `yaml:",inline"`
	File            string `yaml:"file,omitempty"`
	Narrative       string `yaml:"narrative,omitempty"`
	Error           string `yaml:"error,omitempty"`
	Degraded        bool   `yaml:"degraded,omitempty"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write every chart and its commentary to a directory",
	Long: `Render every section of the report and write the charts as PNG files
together with a report.yaml manifest holding titles and commentary.
Charts that cannot be drawn are listed in the manifest with their error.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)
		if out, _ := cmd.Flags().GetString("output"); out != "" {
			cfg.OutputDir = out
		}
		categoryFlag, _ := cmd.Flags().GetString("category")
		category := parseCategory(categoryFlag)

		reports, err := loadReporter(cfg, logger).All(context.Background(), category)
		if err != nil {
			exitWithError("failed to render report: %v", err)
		}
		m, err := writeReport(cfg.OutputDir, reports)
		if err != nil {
			exitWithError("failed to write report: %v", err)
		}

		written, failed := 0, 0
		for _, s := range m.Sections {
			for _, c := range s.Charts {
				if c.Error != "" {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %s\n", c.ID, c.Error)
					continue
				}
				written++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d charts to %s (%d unavailable)\n", written, cfg.OutputDir, failed)
	},
}

// writeReport writes one PNG per drawn chart and the manifest into dir.
func writeReport(dir string, reports []*usecase.SectionReport) (*manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	m := &manifest{Introduction: render.Introduction}
	for _, rep := range reports {
		sec := manifestSection{
			Name:              string(rep.Section),
			Title:             rep.Title,
			Category:          string(rep.Category),
			TotalContributors: rep.TotalContributors,
		}
		for _, c := range rep.Charts {
			mc := manifestChart{Artifact: c.Artifact, Narrative: c.Narrative, Degraded: c.Degraded()}
			mc.PNG = nil
			if c.Err != nil {
				mc.Error = c.Err.Error()
			} else {
				mc.File = c.ID + ".png"
				if err := os.WriteFile(filepath.Join(dir, mc.File), c.PNG, 0o644); err != nil {
					return nil, fmt.Errorf("write %s: %w", mc.File, err)
				}
			}
			sec.Charts = append(sec.Charts, mc)
		}
		m.Sections = append(m.Sections, sec)
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), b, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", manifestName, err)
	}
	return m, nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("output", "o", "", "Output directory (overrides output_dir)")
	reportCmd.Flags().String("category", "stars", "Category of the top repositories chart")
}
