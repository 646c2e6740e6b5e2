package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/alberto-moreno-sa/notion-blog/internal/blog"
	"github.com/alberto-moreno-sa/notion-blog/internal/config"
	"github.com/alberto-moreno-sa/notion-blog/internal/notion"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "notion-blog",
	Short: "Publish a Notion database as a blog",
	Long:  "CLI tool that reads blog posts from a Notion database and builds, serves or exports them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAssembler wires the Notion client into the post pipeline.
func newAssembler(c *config.Config) *blog.Assembler {
	client := notion.NewClient(c.NotionToken)
	resolver := blog.NewResolver(client, c.DatabaseID, c.Properties())
	aggregator := blog.NewAggregator(client)
	return blog.NewAssembler(resolver, aggregator, c.Concurrency)
}
