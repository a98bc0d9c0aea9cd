package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-publisher/cmd/wxpub/internal/bootstrap"
	publishcmd "github.com/goliatone/go-publisher/internal/commands/publish"
)

var appBuilder = bootstrap.BuildApp

type cli struct {
	configPath string
	appID      string
	appSecret  string
	verbose    bool
	jsonOutput bool

	out io.Writer
	app *bootstrap.App
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "wxpub",
		Short: "Publish Markdown articles as official account drafts",
		Long: `wxpub renders Markdown with an inline-styled theme, uploads every
referenced image and the cover, and stores the result as a draft.

Configuration is read from --config, then WXPUB_* environment variables
(for example WXPUB_APP_ID and WXPUB_APP_SECRET).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&c.appID, "app-id", "", "Override the configured app id")
	flags.StringVar(&c.appSecret, "app-secret", "", "Override the configured app secret")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&c.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(
		c.publishCmd(),
		c.updateCmd(),
		c.draftsCmd(),
		c.imageCmd(),
		c.themesCmd(),
		c.previewCmd(),
		c.tokenCmd(),
		c.statsCmd(),
	)
	return root
}

// load builds the client on first use so commands that need no credentials
// never touch configuration.
func (c *cli) load() (*bootstrap.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := appBuilder(bootstrap.Options{
		ConfigPath: c.configPath,
		Verbose:    c.verbose,
		AppID:      c.appID,
		AppSecret:  c.appSecret,
		Reporter:   c.report,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if app == nil || app.Client == nil || app.Handlers == nil {
		return nil, fmt.Errorf("bootstrap: client not configured")
	}
	c.app = app
	return app, nil
}

func (c *cli) report(result publishcmd.Result) {
	if c.jsonOutput {
		_ = c.printJSON(newResultView(result))
		return
	}
	switch {
	case result.Outcomes != nil:
		tw := c.table()
		fmt.Fprintln(tw, "REFERENCE\tURL\tERROR")
		for _, out := range result.Outcomes {
			errText := ""
			if out.Err != nil {
				errText = out.Err.Error()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", out.Reference, out.Entry.URL, errText)
		}
		_ = tw.Flush()
	case result.Path != "":
		fmt.Fprintf(c.out, "%s: %s -> %s\n", result.Operation, result.Path, result.MediaID)
	default:
		fmt.Fprintf(c.out, "%s: %s\n", result.Operation, result.MediaID)
	}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
}

type outcomeView struct {
	Reference    string `json:"reference"`
	URL          string `json:"url,omitempty"`
	MediaID      string `json:"media_id,omitempty"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
	Error        string `json:"error,omitempty"`
}

type resultView struct {
	Operation string        `json:"operation"`
	Path      string        `json:"path,omitempty"`
	MediaID   string        `json:"media_id,omitempty"`
	Images    []outcomeView `json:"images,omitempty"`
}

func newResultView(result publishcmd.Result) resultView {
	view := resultView{Operation: result.Operation, Path: result.Path, MediaID: result.MediaID}
	for _, out := range result.Outcomes {
		ov := outcomeView{
			Reference:    out.Reference,
			URL:          out.Entry.URL,
			MediaID:      out.Entry.MediaID,
			Deduplicated: out.Deduplicated,
		}
		if out.Err != nil {
			ov.Error = out.Err.Error()
		}
		view.Images = append(view.Images, ov)
	}
	return view
}
