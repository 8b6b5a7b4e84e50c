package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/naka-gawa/github-report/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report as a web dashboard",
	Long: `Load the dataset once and serve the report as a web dashboard with a
navigation sidebar, chart images, a JSON API and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfg := loadConfig(cmd)
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		reporter := loadReporter(cfg, logger)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.New(reporter, logger).Run(ctx, cfg.ListenAddr); err != nil {
			exitWithError("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides listen_addr)")
}
