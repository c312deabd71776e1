package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/spachava753/abook/internal/contacts"
)

const (
	defaultWidth = 100
	maxIDColumn  = 20
)

// SearchTable renders search results. The ID column only appears when
// withIDs is set, which callers decide from duplicate display names in the
// result set.
func SearchTable(out io.Writer, list []contacts.Contact, withIDs bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if withIDs {
		fmt.Fprintln(w, "NAME\tNICKNAME\tORGANIZATION\tID")
	} else {
		fmt.Fprintln(w, "NAME\tNICKNAME\tORGANIZATION")
	}
	for _, c := range list {
		if withIDs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, orDash(c.Nickname), orDash(c.Organization), shortID(c.ID))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, orDash(c.Nickname), orDash(c.Organization))
		}
	}
	w.Flush()
}

// ListTable renders the contact listing with primary phone and email.
func ListTable(out io.Writer, list []contacts.Contact) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPHONE\tEMAIL")
	for _, c := range list {
		var phone, email string
		if len(c.Phones) > 0 {
			phone = c.Phones[0].Value
		}
		if len(c.Emails) > 0 {
			email = c.Emails[0].Value
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, phone, email)
	}
	w.Flush()
}

// GroupsTable renders group names with member counts.
func GroupsTable(out io.Writer, groups []contacts.Group) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tCONTACTS")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\n", g.Name, g.Count)
	}
	w.Flush()
}

// ContactDetail renders every populated field of one contact.
func ContactDetail(out io.Writer, c contacts.Contact) {
	fmt.Fprintf(out, "%s %s\n", Key("Name:        "), c.Name)
	fmt.Fprintf(out, "%s %s\n", Key("ID:          "), c.ID)
	detailScalar(out, "Nickname:    ", c.Nickname)
	detailScalar(out, "Organization:", c.Organization)
	detailScalar(out, "Department:  ", c.Department)
	detailScalar(out, "Job Title:   ", c.JobTitle)
	detailScalar(out, "Birthday:    ", c.Birthday.String())

	detailLabeled(out, "PHONES", c.Phones)
	detailLabeled(out, "EMAILS", c.Emails)

	if len(c.Addresses) > 0 {
		fmt.Fprintf(out, "\n%s\n", Header("ADDRESSES:"))
		for _, a := range c.Addresses {
			fmt.Fprintf(out, "  %-10s %s\n", orOther(a.Label), a.Format())
		}
	}

	detailLabeled(out, "URLS", c.URLs)
	detailLabeled(out, "SOCIAL PROFILES", c.SocialProfiles)
	detailLabeled(out, "RELATIONS", c.Relations)

	if c.Note != "" {
		fmt.Fprintf(out, "\n%s\n", Header("NOTE:"))
		for _, line := range wrapText(c.Note, TerminalWidth(out)-2) {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
}

func detailScalar(out io.Writer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(out, "%s %s\n", Key(key), value)
}

func detailLabeled(out io.Writer, header string, values []contacts.LabeledValue) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", Header(header+":"))
	for _, v := range values {
		fmt.Fprintf(out, "  %-10s %s\n", orOther(v.Label), v.Value)
	}
}

// TerminalWidth returns the width of out when it is a terminal, otherwise a
// fixed default so piped output is stable.
func TerminalWidth(out io.Writer) int {
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orOther(label string) string {
	if label == "" {
		return "other"
	}
	return label
}

func shortID(id string) string {
	if len(id) > maxIDColumn {
		return id[:maxIDColumn-3] + "..."
	}
	return id
}

func wrapText(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if width <= 0 {
		return []string{text}
	}

	words := strings.Fields(text)
	lines := make([]string, 0, len(words))
	current := ""

	flush := func() {
		if current == "" {
			return
		}
		lines = append(lines, current)
		current = ""
	}

	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}

		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			flush()
			current = word
		}
	}
	flush()
	return lines
}
