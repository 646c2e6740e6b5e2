package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alberto-moreno-sa/notion-blog/internal/render"
	"github.com/alberto-moreno-sa/notion-blog/internal/server"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog over HTTP, regenerating pages after the revalidate window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addrFlag != "" {
			cfg.Addr = addrFlag
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rd, err := render.New(cfg.SiteTitle, cfg.TemplatesDir)
		if err != nil {
			return fmt.Errorf("templates: %w", err)
		}

		srv := server.New(newAssembler(cfg), rd, cfg.Revalidate)
		if cfg.TemplatesDir != "" {
			if err := srv.WatchTemplates(ctx, cfg.TemplatesDir, cfg.SiteTitle); err != nil {
				return err
			}
		}

		return srv.Run(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides ADDR)")
	rootCmd.AddCommand(serveCmd)
}
