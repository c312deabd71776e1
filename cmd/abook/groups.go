package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/abook/internal/clifmt"
)

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List contact groups",
		Long: `List all contact groups with their contact counts.

Examples:
  abook groups
  abook groups --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, closeFn, err := openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			groups, err := eng.Groups()
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(groups)
			}
			if len(groups) == 0 {
				fmt.Println("No groups found")
				return nil
			}

			clifmt.GroupsTable(os.Stdout, groups)
			fmt.Printf("\nTotal: %d group(s)\n", len(groups))
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}
