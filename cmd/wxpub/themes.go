package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-publisher/internal/themes"
)

// themesCmd reads the built-in registry directly, so it works without
// credentials.
func (c *cli) themesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List article and code themes",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			registry := themes.NewRegistry()
			articleThemes := registry.Names()
			codeThemes := registry.CodeNames()
			if c.jsonOutput {
				return c.printJSON(map[string][]string{"themes": articleThemes, "code_themes": codeThemes})
			}
			tw := c.table()
			fmt.Fprintln(tw, "THEME\tDESCRIPTION")
			for _, name := range articleThemes {
				theme, _ := registry.Theme(name)
				fmt.Fprintf(tw, "%s\t%s\n", name, theme.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "code themes:")
			for _, name := range codeThemes {
				fmt.Fprintf(c.out, "  %s\n", name)
			}
			return nil
		},
	}
}
