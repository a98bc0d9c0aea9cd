package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	publisher "github.com/goliatone/go-publisher"
	publishcmd "github.com/goliatone/go-publisher/internal/commands/publish"
)

func (c *cli) draftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List, inspect and delete drafts",
	}
	cmd.AddCommand(c.draftsListCmd(), c.draftsGetCmd(), c.draftsDeleteCmd())
	return cmd
}

type draftView struct {
	MediaID    string              `json:"media_id"`
	UpdateTime time.Time           `json:"update_time"`
	Articles   []publisher.Article `json:"articles"`
}

func newDraftView(d publisher.Draft) draftView {
	return draftView{MediaID: d.MediaID, UpdateTime: d.UpdateTime, Articles: d.Articles}
}

func (c *cli) draftsListCmd() *cobra.Command {
	var offset, count int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List drafts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			page, err := app.Client.ListDrafts(cmd.Context(), offset, count)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				views := make([]draftView, 0, len(page.Drafts))
				for _, d := range page.Drafts {
					views = append(views, newDraftView(d))
				}
				return c.printJSON(map[string]any{"total": page.Total, "count": page.Count, "drafts": views})
			}
			tw := c.table()
			fmt.Fprintln(tw, "MEDIA ID\tUPDATED\tTITLE")
			for _, d := range page.Drafts {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.MediaID, formatTime(d.UpdateTime), firstTitle(d))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d of %d drafts\n", page.Count, page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Position of the first draft to return")
	cmd.Flags().IntVar(&count, "count", 20, "Number of drafts to return (1-20)")
	return cmd
}

func (c *cli) draftsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <media-id>",
		Short: "Show a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			draft, err := app.Client.GetDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(newDraftView(*draft))
			}
			fmt.Fprintf(c.out, "media id: %s\nupdated:  %s\n", draft.MediaID, formatTime(draft.UpdateTime))
			for i, a := range draft.Articles {
				fmt.Fprintf(c.out, "[%d] %s\n    author: %s\n    digest: %s\n", i, a.Title, a.Author, a.Digest)
				if a.URL != "" {
					fmt.Fprintf(c.out, "    url:    %s\n", a.URL)
				}
			}
			return nil
		},
	}
}

func (c *cli) draftsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <media-id>",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			return app.Handlers.DeleteDraft.Execute(cmd.Context(), publishcmd.DeleteDraftCommand{MediaID: args[0]})
		},
	}
}

func firstTitle(d publisher.Draft) string {
	if len(d.Articles) == 0 {
		return ""
	}
	return d.Articles[0].Title
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
