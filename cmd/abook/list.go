package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/abook/internal/clifmt"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all contacts",
		Long: `List all contacts or contacts in a specific group.

Examples:
  abook list
  abook list --limit 10
  abook list --group "Family"
  abook list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			group, _ := cmd.Flags().GetString("group")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			eng, closeFn, err := openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := eng.List(group, limit)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(results)
			}
			if len(results) == 0 {
				if group != "" {
					fmt.Printf("No contacts found in group '%s'\n", group)
				} else {
					fmt.Println("No contacts found")
				}
				return nil
			}

			clifmt.ListTable(os.Stdout, results)
			fmt.Printf("\nTotal: %d contact(s)\n", len(results))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "l", 0, "Limit number of results")
	cmd.Flags().StringP("group", "g", "", "Filter by group name")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}
