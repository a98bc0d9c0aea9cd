package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	publishcmd "github.com/goliatone/go-publisher/internal/commands/publish"
)

func bindArticleFlags(fs *pflag.FlagSet, opts *publishcmd.ArticleOptions) {
	fs.StringVarP(&opts.Theme, "theme", "t", "", "Article theme, see wxpub themes")
	fs.StringVar(&opts.Title, "title", "", "Title, overriding front matter")
	fs.StringVar(&opts.Author, "author", "", "Author, overriding front matter")
	fs.StringVar(&opts.Cover, "cover", "", "Cover image path")
	fs.BoolVar(&opts.HideCover, "hide-cover", false, "Do not show the cover inside the article body")
	fs.BoolVar(&opts.EnableComments, "comments", false, "Open comments on the article")
	fs.BoolVar(&opts.FansOnlyComments, "fans-only", false, "Restrict comments to followers")
	fs.StringVar(&opts.SourceURL, "source-url", "", "Link behind \"read original\"")
}

func (c *cli) publishCmd() *cobra.Command {
	msg := publishcmd.PublishArticleCommand{}
	cmd := &cobra.Command{
		Use:   "publish <file.md>",
		Short: "Render a Markdown file and store it as a draft",
		Long: `Render a Markdown file and store it as a draft. When dedup by title is
enabled and a draft with the same title exists, that draft is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			msg.Path = args[0]
			return app.Handlers.Publish.Execute(cmd.Context(), msg)
		},
	}
	bindArticleFlags(cmd.Flags(), &msg.ArticleOptions)
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	msg := publishcmd.UpdateDraftCommand{}
	cmd := &cobra.Command{
		Use:   "update <media-id> <file.md>",
		Short: "Re-render a Markdown file into an existing draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			msg.MediaID = args[0]
			msg.Path = args[1]
			return app.Handlers.UpdateDraft.Execute(cmd.Context(), msg)
		},
	}
	bindArticleFlags(cmd.Flags(), &msg.ArticleOptions)
	return cmd
}

func (c *cli) imageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <path>...",
		Short: "Upload images for use inside article bodies and print their URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			return app.Handlers.UploadImages.Execute(cmd.Context(), publishcmd.UploadImagesCommand{Paths: args})
		},
	}
}
