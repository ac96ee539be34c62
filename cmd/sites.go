package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "Lists the available site profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range sites.Names() {
				profile, err := sites.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d sections\n",
					name, profile.BaseURL, len(profile.Sections))
			}
			return nil
		},
	}
}
