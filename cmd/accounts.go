package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/netlogin/internal/account"
)

func newAccountsCmd() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect the configured account list",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Parse the account list and print the usernames that would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			creds, err := account.Parse(cfg.Run().Accounts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d valid account(s):\n", len(creds))
			for _, user := range account.Users(creds) {
				fmt.Fprintf(out, "  %s\n", user)
			}
			return nil
		},
	}
	checkCmd.Flags().String("accounts", "", "accounts to check instead of the configured list")
	accountsCmd.AddCommand(checkCmd)
	return accountsCmd
}
