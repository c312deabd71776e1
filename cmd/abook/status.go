package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spachava753/abook/internal/contacts"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show contacts access status",
		Long: `Report whether this process can read the contacts store.

Statuses:
  authorized      access is granted
  denied          the user denied access
  restricted      policy restrictions prevent access
  not_determined  access has not been requested yet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, closeFn, err := openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			status, err := eng.Status()
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(map[string]contacts.AuthStatus{"status": status})
			}
			fmt.Println(status)
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}
