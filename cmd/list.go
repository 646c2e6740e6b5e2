package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/alberto-moreno-sa/notion-blog/internal/blog"
	"github.com/alberto-moreno-sa/notion-blog/internal/model"
	"github.com/alberto-moreno-sa/notion-blog/internal/render"
)

var (
	formatFlag string
	slugFlag   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the published posts, or a single post with --slug",
	RunE: func(cmd *cobra.Command, args []string) error {
		assembler := newAssembler(cfg)

		var posts []model.Post
		if cmd.Flags().Changed("slug") {
			post, err := assembler.Single(cmd.Context(), slugFlag)
			if errors.Is(err, blog.ErrNotFound) {
				return fmt.Errorf("no post with slug %q", slugFlag)
			}
			if err != nil {
				return err
			}
			posts = []model.Post{*post}
		} else {
			var err error
			posts, err = assembler.Listing(cmd.Context())
			if err != nil {
				return err
			}
		}

		switch formatFlag {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(posts)
		case "yaml":
			out, err := yaml.Marshal(posts)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		case "table":
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tTITLE\tCREATED\tBLOCKS")
			for _, p := range posts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.SlugOrEmpty(), render.DisplayTitle(p), render.FormatTime(p.CreatedTime), len(p.Contents))
			}
			return w.Flush()
		}
		return fmt.Errorf("unknown format %q (want table, json or yaml)", formatFlag)
	},
}

func init() {
	listCmd.Flags().StringVarP(&formatFlag, "format", "f", "table", "output format: table, json or yaml")
	listCmd.Flags().StringVar(&slugFlag, "slug", "", "fetch a single post by slug, published or not")
	rootCmd.AddCommand(listCmd)
}
