package main

import (
	"fmt"
	"html"
	"os"

	"github.com/spf13/cobra"

	publisher "github.com/goliatone/go-publisher"
	publishcmd "github.com/goliatone/go-publisher/internal/commands/publish"
)

var configLoader = publisher.LoadConfig

func (c *cli) previewCmd() *cobra.Command {
	var (
		article   publishcmd.ArticleOptions
		codeTheme string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "preview <file.md>",
		Short: "Render a Markdown file locally without uploading anything",
		Long: `Render a Markdown file with the configured theme and write a standalone
HTML page. Images are not uploaded and mermaid blocks stay as code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := configLoader(c.configPath)
			if err != nil {
				return err
			}
			if codeTheme != "" {
				cfg.Theme.CodeTheme = codeTheme
			}
			preview, err := publisher.RenderPreview(args[0], article.UploadOptions(), cfg.Theme)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(preview)
			}
			page := previewPage(preview)
			if output == "" || output == "-" {
				_, err = fmt.Fprint(c.out, page)
				return err
			}
			if err := os.WriteFile(output, []byte(page), 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			fmt.Fprintf(c.out, "preview written to %s (theme %s, %d local images)\n", output, preview.Theme, len(preview.LocalImages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&article.Theme, "theme", "t", "", "Article theme")
	cmd.Flags().StringVar(&article.Title, "title", "", "Title, overriding front matter")
	cmd.Flags().StringVar(&article.Author, "author", "", "Author, overriding front matter")
	cmd.Flags().StringVar(&codeTheme, "code-theme", "", "Code block theme")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the page to a file instead of stdout")
	return cmd
}

func previewPage(p publisher.Preview) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="max-width: 677px; margin: 0 auto; padding: 20px;">
<h1>%s</h1>
<p style="color: #888;">%s</p>
%s
</body>
</html>
`, html.EscapeString(p.Title), html.EscapeString(p.Title), html.EscapeString(p.Author), p.HTML)
}
