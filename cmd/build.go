package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/alberto-moreno-sa/notion-blog/internal/buildlog"
	"github.com/alberto-moreno-sa/notion-blog/internal/config"
	"github.com/alberto-moreno-sa/notion-blog/internal/notify"
	"github.com/alberto-moreno-sa/notion-blog/internal/render"
	"github.com/alberto-moreno-sa/notion-blog/internal/site"
)

const serviceName = "notion-blog"

var outputFlag string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the blog as static HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFlag != "" {
			cfg.OutputDir = outputFlag
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		rd, err := render.New(cfg.SiteTitle, cfg.TemplatesDir)
		if err != nil {
			return fmt.Errorf("templates: %w", err)
		}

		entry := buildlog.NewEntry(serviceName)
		stats, buildErr := site.NewBuilder(newAssembler(cfg), rd, cfg.OutputDir).Build(ctx)
		if buildErr != nil {
			entry.Status = buildlog.StatusFailed
			entry.Error = buildErr.Error()
		} else {
			entry.Status = buildlog.StatusSuccess
			entry.Posts = stats.Posts
			entry.Pages = stats.Pages
			log.Printf("Build complete: %d posts, %d pages written to %s", stats.Posts, stats.Pages, cfg.OutputDir)
			if stats.Skipped > 0 {
				log.Printf("WARNING: %d posts skipped", stats.Skipped)
			}
		}

		// Bookkeeping runs on its own deadline so a timed out build is still recorded.
		bgCtx, bgCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer bgCancel()
		recordBuildLog(bgCtx, cfg, entry)
		notifyBuild(bgCtx, cfg, entry)

		if buildErr != nil {
			return fmt.Errorf("build: %w", buildErr)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory (overrides OUTPUT_DIR)")
	rootCmd.AddCommand(buildCmd)
}

// recordBuildLog stores the entry and prunes older ones. Failures are logged
// and never fail the build.
func recordBuildLog(ctx context.Context, c *config.Config, entry buildlog.Entry) {
	store, err := buildlog.Open(ctx, c.DatabaseURL, c.BuildLogSQLite)
	if errors.Is(err, buildlog.ErrNoStore) {
		return
	}
	if err != nil {
		log.Printf("WARNING: failed to open build log: %v", err)
		return
	}
	defer store.Close()

	log.Println("Recording build log...")
	if err := store.Record(ctx, entry); err != nil {
		log.Printf("WARNING: failed to record build log: %v", err)
		return
	}
	if err := store.Prune(ctx, entry.Service, c.BuildLogKeep); err != nil {
		log.Printf("WARNING: failed to prune build log: %v", err)
		return
	}
	log.Printf("Build log updated (keeping %d entries)", c.BuildLogKeep)
}

func newNotifier(c *config.Config) notify.Notifier {
	if c.TelegramToken == "" || c.TelegramChatID == "" {
		return notify.Nop{}
	}
	tg, err := notify.NewTelegram(c.TelegramToken, c.TelegramChatID)
	if err != nil {
		log.Printf("WARNING: telegram disabled: %v", err)
		return notify.Nop{}
	}
	return tg
}

func notifyBuild(ctx context.Context, c *config.Config, entry buildlog.Entry) {
	if err := newNotifier(c).BuildFinished(ctx, entry); err != nil {
		log.Printf("WARNING: failed to send build notification: %v", err)
	}
}
