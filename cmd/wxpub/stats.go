package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-publisher/internal/datacube"
)

var statsKinds = []string{"read", "share", "summary", "total"}

func (c *cli) statsCmd() *cobra.Command {
	var begin, end string
	cmd := &cobra.Command{
		Use:       "stats <read|share|summary|total>",
		Short:     "Show article statistics for a date range",
		Long:      "Show article statistics for a date range. Dates use YYYY-MM-DD and default to yesterday.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: statsKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			yesterday := datacube.Day(time.Now().AddDate(0, 0, -1))
			r := datacube.Range{Begin: begin, End: end}
			if strings.TrimSpace(r.Begin) == "" {
				r.Begin = yesterday.Begin
			}
			if strings.TrimSpace(r.End) == "" {
				r.End = r.Begin
			}
			if err := r.Validate(); err != nil {
				return fmt.Errorf("date range: %w", err)
			}

			app, err := c.load()
			if err != nil {
				return err
			}
			dc := app.Client.Datacube()
			if dc == nil {
				return fmt.Errorf("statistics client not configured")
			}

			ctx := cmd.Context()
			switch args[0] {
			case "read":
				resp, err := dc.GetArticleRead(ctx, r)
				if err != nil {
					return err
				}
				return c.printStats(resp, resp.IsDelay, func() {
					tw := c.table()
					fmt.Fprintln(tw, "DATE\tMSG ID\tREAD USERS")
					for _, row := range resp.List {
						fmt.Fprintf(tw, "%s\t%s\t%d\n", row.RefDate, row.MsgID, row.Detail.ReadUser)
					}
					_ = tw.Flush()
				})
			case "share":
				resp, err := dc.GetArticleShare(ctx, r)
				if err != nil {
					return err
				}
				return c.printStats(resp, resp.IsDelay, func() {
					tw := c.table()
					fmt.Fprintln(tw, "DATE\tMSG ID\tSHARE USERS")
					for _, row := range resp.List {
						fmt.Fprintf(tw, "%s\t%s\t%d\n", row.RefDate, row.MsgID, row.Detail.ShareUser)
					}
					_ = tw.Flush()
				})
			case "summary":
				resp, err := dc.GetBizSummary(ctx, r)
				if err != nil {
					return err
				}
				return c.printStats(resp, resp.IsDelay, func() {
					tw := c.table()
					fmt.Fprintln(tw, "DATE\tREAD\tSHARE\tLIKE\tCOMMENTS\tCOLLECTED")
					for _, row := range resp.List {
						d := row.Detail
						fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", row.RefDate, d.ReadUser, d.ShareUser, d.LikeUser, d.CommentCount, d.CollectionUser)
					}
					_ = tw.Flush()
				})
			default:
				resp, err := dc.GetArticleTotalDetail(ctx, r)
				if err != nil {
					return err
				}
				return c.printStats(resp, resp.IsDelay, func() {
					tw := c.table()
					fmt.Fprintln(tw, "DATE\tMSG ID\tSTAT DATE\tREAD\tSHARE\tFINISH RATE")
					for _, row := range resp.List {
						for _, d := range row.DetailList {
							fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\n", row.RefDate, row.MsgID, d.StatDate, d.ReadUser, d.ShareUser, d.ReadFinishRate)
						}
					}
					_ = tw.Flush()
				})
			}
		},
	}
	cmd.Flags().StringVar(&begin, "begin", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last day of the range, defaults to --begin")
	return cmd
}

func (c *cli) printStats(resp any, delayed bool, table func()) error {
	if c.jsonOutput {
		return c.printJSON(resp)
	}
	table()
	if delayed {
		fmt.Fprintln(c.out, "note: the platform is still aggregating this range")
	}
	return nil
}
