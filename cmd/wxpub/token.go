package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	publisher "github.com/goliatone/go-publisher"
)

type credentialView struct {
	Token      string    `json:"token"`
	ObtainedAt time.Time `json:"obtained_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	ExpiresIn  string    `json:"expires_in"`
}

func (c *cli) tokenCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain a credential and show when it expires",
		Long: `Obtain a credential through the cache and show when it expires. The token
value is masked. --refresh discards the cached credential first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load()
			if err != nil {
				return err
			}
			var cred publisher.Credential
			if refresh {
				cred, err = app.Client.RefreshToken(cmd.Context())
			} else {
				cached, ok := app.Client.TokenInfo()
				if ok {
					cred = cached
				} else {
					cred, err = app.Client.RefreshToken(cmd.Context())
				}
			}
			if err != nil {
				return err
			}

			view := credentialView{
				Token:      maskToken(cred.Value),
				ObtainedAt: cred.ObtainedAt,
				ExpiresAt:  cred.ExpiresAt,
				ExpiresIn:  time.Until(cred.ExpiresAt).Round(time.Second).String(),
			}
			if c.jsonOutput {
				return c.printJSON(view)
			}
			fmt.Fprintf(c.out, "token:      %s\nobtained:   %s\nexpires:    %s (in %s)\n",
				view.Token, formatTime(view.ObtainedAt), formatTime(view.ExpiresAt), view.ExpiresIn)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Force a new credential")
	return cmd
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
