package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/abook/internal/clifmt"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show full contact details",
		Long: `Display all available information for a contact.
Searches by exact name first, then falls back to partial match.
Use --id to select a specific contact by ID (useful for duplicates).

Examples:
  abook show "Erik Fisher"
  abook show fisher
  abook show "Erik Fisher" --json
  abook show --id "ABC123-DEF456:ABPerson"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			asJSON, _ := cmd.Flags().GetBool("json")

			var name string
			if len(args) > 0 {
				name = args[0]
			}
			if name == "" && id == "" {
				return fmt.Errorf("please provide a name or use --id flag")
			}
			if name != "" && id != "" {
				return fmt.Errorf("provide either a name or --id, not both")
			}

			eng, closeFn, err := openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			contact, err := eng.Resolve(name, id)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(contact)
			}
			clifmt.ContactDetail(os.Stdout, *contact)
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.Flags().String("id", "", "Get contact by ID instead of name")

	return cmd
}
