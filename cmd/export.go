package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/alberto-moreno-sa/notion-blog/internal/export"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the published posts as Markdown files with YAML front matter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		posts, err := newAssembler(cfg).Listing(ctx)
		if err != nil {
			return fmt.Errorf("listing: %w", err)
		}

		paths, err := export.WriteAll(exportDir, posts)
		if err != nil {
			return err
		}
		log.Printf("Exported %d posts to %s", len(paths), exportDir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "content", "directory the Markdown files are written to")
	rootCmd.AddCommand(exportCmd)
}
