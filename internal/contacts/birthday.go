package contacts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Birthday is an optional calendar date whose year component may be absent.
// The zero value means the contact has no recorded birthday.
type Birthday struct {
	Year  int // 0 when the store records no year
	Month int // 1-12
	Day   int // 1-31
}

// IsZero reports whether no birthday is recorded.
func (b Birthday) IsZero() bool {
	return b.Month == 0 && b.Day == 0 && b.Year == 0
}

// HasYear reports whether the year component is known.
func (b Birthday) HasYear() bool {
	return b.Year > 0
}

// MonthDay returns the zero-padded "MM-DD" form used by the exact birthday
// matcher, or "" when no birthday is recorded.
func (b Birthday) MonthDay() string {
	if b.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", b.Month, b.Day)
}

// String renders ISO "YYYY-MM-DD", or "--MM-DD" when the year is unknown,
// or "" when no birthday is recorded.
func (b Birthday) String() string {
	switch {
	case b.IsZero():
		return ""
	case b.HasYear():
		return fmt.Sprintf("%04d-%02d-%02d", b.Year, b.Month, b.Day)
	default:
		return fmt.Sprintf("--%02d-%02d", b.Month, b.Day)
	}
}

// ParseBirthday parses "", "YYYY-MM-DD" and "--MM-DD". A zero or sentinel
// year (Apple stores year-less birthdays with reference year 1604) yields a
// year-less birthday.
func ParseBirthday(s string) (Birthday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Birthday{}, nil
	}

	var b Birthday
	if strings.HasPrefix(s, "--") {
		if _, err := fmt.Sscanf(s, "--%d-%d", &b.Month, &b.Day); err != nil {
			return Birthday{}, fmt.Errorf("contacts: invalid birthday %q: %w", s, err)
		}
	} else {
		if _, err := fmt.Sscanf(s, "%d-%d-%d", &b.Year, &b.Month, &b.Day); err != nil {
			return Birthday{}, fmt.Errorf("contacts: invalid birthday %q: %w", s, err)
		}
	}
	if b.Month < 1 || b.Month > 12 || b.Day < 1 || b.Day > 31 {
		return Birthday{}, fmt.Errorf("contacts: invalid birthday %q", s)
	}
	if b.Year <= yearlessSentinel {
		b.Year = 0
	}
	return b, nil
}

// Apple's reference year for birthdays recorded without a year.
const yearlessSentinel = 1604

// MarshalJSON encodes the birthday as its String form.
func (b Birthday) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes any form accepted by ParseBirthday.
func (b *Birthday) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBirthday(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
