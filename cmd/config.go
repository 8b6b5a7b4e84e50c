package cmd

import (
	"fmt"

	"github.com/naka-gawa/github-report/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration, or save it with --write",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		if path, _ := cmd.Flags().GetString("write"); path != "" {
			if err := config.Save(cfg, path); err != nil {
				exitWithError("%v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved configuration to %s\n", path)
			return
		}
		shown := *cfg
		if shown.GitHubToken != "" {
			shown.GitHubToken = "********"
		}
		b, err := yaml.Marshal(&shown)
		if err != nil {
			exitWithError("failed to marshal config: %v", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("write", "w", "", "Write the effective configuration to this YAML file")
}
