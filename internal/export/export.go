// Package export serializes contacts to vCard 4.0.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-vcard"

	"github.com/spachava753/abook/internal/contacts"
)

// VCards writes one vCard 4.0 record per contact to w, in input order.
// Records that cannot be serialized fail the whole export with an
// export_failed error rather than producing a partial stream.
func VCards(w io.Writer, list []contacts.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range list {
		card, err := buildCard(c)
		if err != nil {
			return err
		}
		if err := enc.Encode(card); err != nil {
			return contacts.Errorf(contacts.ErrorCodeExportFailed, "encoding vCard for %q failed: %v", c.Name, err)
		}
	}
	return nil
}

func buildCard(c contacts.Contact) (vcard.Card, error) {
	if err := validateText(c); err != nil {
		return nil, err
	}

	card := make(vcard.Card)
	card.SetValue(vcard.FieldFormattedName, displayName(c))
	card.AddName(&vcard.Name{
		FamilyName:     c.LastName,
		GivenName:      c.FirstName,
		AdditionalName: c.MiddleName,
	})
	if c.ID != "" {
		card.SetValue(vcard.FieldUID, c.ID)
	}
	if c.Nickname != "" {
		card.SetValue(vcard.FieldNickname, c.Nickname)
	}
	if c.Organization != "" {
		org := c.Organization
		if c.Department != "" {
			org += ";" + c.Department
		}
		card.SetValue(vcard.FieldOrganization, org)
	}
	if c.JobTitle != "" {
		card.SetValue(vcard.FieldTitle, c.JobTitle)
	}

	for _, p := range c.Phones {
		card.Add(vcard.FieldTelephone, labeledField(p))
	}
	for _, e := range c.Emails {
		card.Add(vcard.FieldEmail, labeledField(e))
	}
	for _, a := range c.Addresses {
		addr := &vcard.Address{
			StreetAddress: a.Street,
			Locality:      a.City,
			Region:        a.State,
			PostalCode:    a.Zip,
			Country:       a.Country,
		}
		if a.Label != "" {
			addr.Field = &vcard.Field{Params: typeParam(a.Label)}
		}
		card.AddAddress(addr)
	}
	for _, u := range c.URLs {
		card.Add(vcard.FieldURL, labeledField(u))
	}
	for _, sp := range c.SocialProfiles {
		card.Add("X-SOCIALPROFILE", labeledField(sp))
	}
	for _, r := range c.Relations {
		card.Add(vcard.FieldRelated, labeledField(r))
	}

	if bday := birthdayValue(c.Birthday); bday != "" {
		card.SetValue(vcard.FieldBirthday, bday)
	}
	if c.Note != "" {
		card.SetValue(vcard.FieldNote, c.Note)
	}

	vcard.ToV4(card)
	return card, nil
}

func labeledField(v contacts.LabeledValue) *vcard.Field {
	f := &vcard.Field{Value: v.Value}
	if v.Label != "" {
		f.Params = typeParam(v.Label)
	}
	return f
}

func typeParam(label string) vcard.Params {
	return vcard.Params{vcard.ParamType: []string{label}}
}

// birthdayValue renders the vCard 4.0 date form: full dates as YYYYMMDD,
// year-less dates as --MMDD.
func birthdayValue(b contacts.Birthday) string {
	switch {
	case b.IsZero():
		return ""
	case b.HasYear():
		return fmt.Sprintf("%04d%02d%02d", b.Year, b.Month, b.Day)
	default:
		return fmt.Sprintf("--%02d%02d", b.Month, b.Day)
	}
}

func displayName(c contacts.Contact) string {
	if c.Name != "" {
		return c.Name
	}
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name != "" {
		return name
	}
	if c.Organization != "" {
		return c.Organization
	}
	return "Unknown"
}

// validateText rejects records whose text fields are not valid UTF-8, which
// would corrupt the vCard output stream.
func validateText(c contacts.Contact) error {
	fields := []string{c.Name, c.FirstName, c.LastName, c.MiddleName, c.Nickname,
		c.Organization, c.Department, c.JobTitle, c.Note}
	for _, lv := range c.Phones {
		fields = append(fields, lv.Label, lv.Value)
	}
	for _, lv := range c.Emails {
		fields = append(fields, lv.Label, lv.Value)
	}
	for _, a := range c.Addresses {
		fields = append(fields, a.Label, a.Street, a.City, a.State, a.Zip, a.Country)
	}
	for _, lv := range c.URLs {
		fields = append(fields, lv.Label, lv.Value)
	}
	for _, lv := range c.SocialProfiles {
		fields = append(fields, lv.Label, lv.Value)
	}
	for _, lv := range c.Relations {
		fields = append(fields, lv.Label, lv.Value)
	}
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return contacts.Errorf(contacts.ErrorCodeExportFailed, "contact %q contains invalid text", c.ID)
		}
	}
	return nil
}
