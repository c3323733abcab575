package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/httpaccess/glob"
	"github.com/kbukum/httpaccess/httpaccess"
)

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match PATTERNS HOST",
		Short: "Check a host against a comma separated bypass list",
		Long: `Check a host against a comma separated bypass list, using the same
glob rules as httpAccess.noProxyFor: '*' matches any run of characters,
'?' exactly one, and matching is case sensitive.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := args[1]
			for _, p := range httpaccess.ParseBypassList(args[0]) {
				if glob.Match(p, host) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s matches %q: direct\n", host, p)
					return nil
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s matches nothing: proxied\n", host)
			return nil
		},
	}
}
