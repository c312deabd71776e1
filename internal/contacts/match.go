package contacts

import "strings"

// Field matchers are pure predicates used by the query engine's in-memory
// filtering path. Every text matcher is case-insensitive substring
// containment; the phone matcher compares digit-normalized forms so
// punctuation differences never cause false negatives.

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// NormalizePhone strips every character except digits and '+'.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchName reports whether q is contained in the contact's display name.
func MatchName(c Contact, q string) bool {
	return containsFold(c.Name, q)
}

// MatchNickname reports whether q is contained in the contact's nickname.
func MatchNickname(c Contact, q string) bool {
	return containsFold(c.Nickname, q)
}

// MatchOrganization reports whether q is contained in the organization.
func MatchOrganization(c Contact, q string) bool {
	return containsFold(c.Organization, q)
}

// MatchNote reports whether q is contained in the note.
func MatchNote(c Contact, q string) bool {
	return containsFold(c.Note, q)
}

// MatchEmail reports whether q is contained in any email address.
func MatchEmail(c Contact, q string) bool {
	for _, e := range c.Emails {
		if containsFold(e.Value, q) {
			return true
		}
	}
	return false
}

// MatchPhone reports whether the digit-normalized q is contained in any
// digit-normalized phone number.
func MatchPhone(c Contact, q string) bool {
	needle := NormalizePhone(q)
	if needle == "" {
		return false
	}
	for _, p := range c.Phones {
		if strings.Contains(NormalizePhone(p.Value), needle) {
			return true
		}
	}
	return false
}

// MatchAddress reports whether q is contained in any single address entry,
// testing the concatenation of street, city, state, zip and country.
func MatchAddress(c Contact, q string) bool {
	for _, a := range c.Addresses {
		joined := strings.Join([]string{a.Street, a.City, a.State, a.Zip, a.Country}, " ")
		if containsFold(joined, q) {
			return true
		}
	}
	return false
}

// MatchBirthday reports whether the contact's birthday month and day equal
// the "MM-DD" query. The year is ignored; contacts without a birthday never
// match.
func MatchBirthday(c Contact, mmdd string) bool {
	if c.Birthday.IsZero() {
		return false
	}
	return c.Birthday.MonthDay() == mmdd
}

// MatchBirthdayMonth reports whether the contact's birthday falls in month
// (1-12). Contacts without a birthday never match.
func MatchBirthdayMonth(c Contact, month int) bool {
	if c.Birthday.IsZero() || month < 1 || month > 12 {
		return false
	}
	return c.Birthday.Month == month
}

// MatchAny reports whether q matches any text field: name, nickname,
// organization, note, email, phone or address.
func MatchAny(c Contact, q string) bool {
	return MatchName(c, q) ||
		MatchNickname(c, q) ||
		MatchOrganization(c, q) ||
		MatchNote(c, q) ||
		MatchEmail(c, q) ||
		MatchPhone(c, q) ||
		MatchAddress(c, q)
}
