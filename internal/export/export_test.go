package export

import (
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-vcard"
	"github.com/nalgeon/be"

	"github.com/spachava753/abook/internal/contacts"
)

func sampleContact() contacts.Contact {
	return contacts.Contact{
		ID:           "UID-1:ABPerson",
		Name:         "Erik Fisher",
		FirstName:    "Erik",
		LastName:     "Fisher",
		Nickname:     "Fish",
		Organization: "Acme",
		Department:   "Platform",
		JobTitle:     "Engineer",
		Birthday:     contacts.Birthday{Year: 1985, Month: 1, Day: 6},
		Note:         "VIP customer",
		Phones: []contacts.LabeledValue{
			{Label: "mobile", Value: "+1 (555) 123-4567"},
		},
		Emails: []contacts.LabeledValue{
			{Label: "work", Value: "erik@acme.example"},
		},
		Addresses: []contacts.Address{
			{Label: "home", Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701", Country: "USA"},
		},
		URLs: []contacts.LabeledValue{
			{Label: "homepage", Value: "https://erik.example"},
		},
	}
}

func TestVCardsOutput(t *testing.T) {
	var buf strings.Builder
	err := VCards(&buf, []contacts.Contact{sampleContact()})
	be.Err(t, err, nil)

	out := buf.String()
	be.True(t, strings.Contains(out, "BEGIN:VCARD"))
	be.True(t, strings.Contains(out, "VERSION:4.0"))
	be.True(t, strings.Contains(out, "FN:Erik Fisher"))
	be.True(t, strings.Contains(out, "N:Fisher;Erik;"))
	be.True(t, strings.Contains(out, "NICKNAME:Fish"))
	be.True(t, strings.Contains(out, "ORG:Acme;Platform"))
	be.True(t, strings.Contains(out, "TITLE:Engineer"))
	be.True(t, strings.Contains(out, "BDAY:19850106"))
	be.True(t, strings.Contains(out, "END:VCARD"))
}

func TestVCardsRoundTrip(t *testing.T) {
	var buf strings.Builder
	err := VCards(&buf, []contacts.Contact{sampleContact()})
	be.Err(t, err, nil)

	dec := vcard.NewDecoder(strings.NewReader(buf.String()))
	card, err := dec.Decode()
	be.Err(t, err, nil)

	be.Equal(t, card.Value(vcard.FieldFormattedName), "Erik Fisher")
	be.Equal(t, card.Value(vcard.FieldUID), "UID-1:ABPerson")
	be.Equal(t, card.Value(vcard.FieldNote), "VIP customer")

	tel := card.Get(vcard.FieldTelephone)
	be.True(t, tel != nil)
	be.Equal(t, tel.Value, "+1 (555) 123-4567")
	be.Equal(t, tel.Params.Get(vcard.ParamType), "mobile")

	addr := card.Address()
	be.True(t, addr != nil)
	be.Equal(t, addr.Locality, "Springfield")
	be.Equal(t, addr.PostalCode, "62701")

	_, err = dec.Decode()
	be.Equal(t, err, io.EOF)
}

func TestVCardsMultipleRecords(t *testing.T) {
	second := contacts.Contact{
		ID:       "UID-2:ABPerson",
		Name:     "Jane Doe",
		Birthday: contacts.Birthday{Month: 10, Day: 19},
	}

	var buf strings.Builder
	err := VCards(&buf, []contacts.Contact{sampleContact(), second})
	be.Err(t, err, nil)

	out := buf.String()
	be.Equal(t, strings.Count(out, "BEGIN:VCARD"), 2)
	be.Equal(t, strings.Count(out, "END:VCARD"), 2)

	// Year-less birthdays use the truncated v4 date form.
	be.True(t, strings.Contains(out, "BDAY:--1019"))

	// Order of the input is the order of the stream.
	be.True(t, strings.Index(out, "Erik Fisher") < strings.Index(out, "Jane Doe"))
}

func TestVCardsInvalidText(t *testing.T) {
	c := sampleContact()
	c.Note = string([]byte{0xff, 0xfe})

	err := VCards(io.Discard, []contacts.Contact{c})
	be.Err(t, err)
	be.Equal(t, contacts.CodeOf(err), contacts.ErrorCodeExportFailed)
}

func TestVCardsCompanyRecord(t *testing.T) {
	c := contacts.Contact{ID: "UID-3:ABPerson", Organization: "Globex Corporation"}

	var buf strings.Builder
	err := VCards(&buf, []contacts.Contact{c})
	be.Err(t, err, nil)
	be.True(t, strings.Contains(buf.String(), "FN:Globex Corporation"))
}
