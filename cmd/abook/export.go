package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/abook/internal/contacts"
	"github.com/spachava753/abook/internal/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Export contacts as vCard",
		Long: `Export contacts in vCard 4.0 format.
Outputs to stdout by default, or to a file with --output.
Use --id to select a specific contact by ID (useful for duplicates),
or --group to export every member of a group.

Examples:
  abook export "Erik Fisher"
  abook export "Erik Fisher" --output erik.vcf
  abook export --id "ABC123-DEF456:ABPerson"
  abook export --group Family --output family.vcf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			group, _ := cmd.Flags().GetString("group")
			output, _ := cmd.Flags().GetString("output")

			var name string
			if len(args) > 0 {
				name = args[0]
			}
			selectors := 0
			for _, s := range []string{name, id, group} {
				if s != "" {
					selectors++
				}
			}
			if selectors != 1 {
				return fmt.Errorf("please provide exactly one of a name, --id or --group")
			}

			eng, closeFn, err := openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			var list []contacts.Contact
			if group != "" {
				members, err := eng.List(group, 0)
				if err != nil {
					return err
				}
				// Group listings are basic detail; re-fetch each member
				// in full so the vCards carry addresses and notes.
				for _, m := range members {
					c, err := eng.Resolve("", m.ID)
					if err != nil {
						return err
					}
					list = append(list, *c)
				}
			} else {
				c, err := eng.Resolve(name, id)
				if err != nil {
					return err
				}
				list = []contacts.Contact{*c}
			}
			if len(list) == 0 {
				return fmt.Errorf("nothing to export")
			}

			if output == "" {
				return export.VCards(os.Stdout, list)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			if err := export.VCards(f, list); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Printf("Exported %d contact(s) to %s\n", len(list), output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path")
	cmd.Flags().String("id", "", "Export contact by ID instead of name")
	cmd.Flags().StringP("group", "g", "", "Export every member of a group")

	return cmd
}
