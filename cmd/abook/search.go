package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/abook/internal/clifmt"
	"github.com/spachava753/abook/internal/contacts"
	"github.com/spachava753/abook/internal/engine"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search contacts by name or other criteria",
		Long: `Search for contacts using various criteria.
Without flags, searches by name. Use flags to search other fields.
Multiple flags are combined with AND logic.

Examples:
  abook search fisher                    # Search by name
  abook search --email "@agens.no"       # Search by email domain
  abook search --org "Acme"              # Search by organization
  abook search --phone "+47"             # Search by phone prefix
  abook search --birthday "01-25"        # Birthday on Jan 25 (MM-DD)
  abook search --birthday-month 1        # All January birthdays
  abook search --note "VIP"              # Search in notes
  abook search --address "Oslo"          # Search in addresses
  abook search --any "fisher"            # Search all fields
  abook search --org "Agens" --json      # JSON output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crit := criteriaFromFlags(cmd, args)
			asJSON, _ := cmd.Flags().GetBool("json")

			if crit.Empty() {
				return fmt.Errorf("please provide a search term or use search flags (--email, --org, etc.)")
			}

			eng, closeFn, err := openEngine()
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := eng.Search(crit)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(results)
			}
			if len(results) == 0 {
				fmt.Println("No contacts found matching the criteria")
				return nil
			}

			clifmt.SearchTable(os.Stdout, results, contacts.HasDuplicateNames(results))
			fmt.Printf("\nFound %d contact(s)\n", len(results))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "l", 0, "Limit number of results")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.Flags().String("email", "", "Search by email (contains)")
	cmd.Flags().String("phone", "", "Search by phone number (contains)")
	cmd.Flags().String("org", "", "Search by organization (contains)")
	cmd.Flags().String("note", "", "Search in notes (contains)")
	cmd.Flags().String("address", "", "Search in addresses (contains)")
	cmd.Flags().String("birthday", "", "Search by birthday (MM-DD format)")
	cmd.Flags().Int("birthday-month", 0, "Search by birthday month (1-12)")
	cmd.Flags().String("any", "", "Search across all fields")

	return cmd
}

// criteriaFromFlags snapshots flag values into one immutable criteria
// struct. A positional term is a name search unless --any is given.
func criteriaFromFlags(cmd *cobra.Command, args []string) engine.Criteria {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	limit, _ := cmd.Flags().GetInt("limit")
	month, _ := cmd.Flags().GetInt("birthday-month")

	crit := engine.Criteria{
		Email:         get("email"),
		Phone:         get("phone"),
		Organization:  get("org"),
		Note:          get("note"),
		Address:       get("address"),
		Birthday:      get("birthday"),
		BirthdayMonth: month,
		Any:           get("any"),
		Limit:         limit,
	}
	if len(args) > 0 && crit.Any == "" {
		crit.Name = args[0]
	}
	return crit
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
