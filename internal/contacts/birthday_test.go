package contacts

import (
	"encoding/json"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseBirthday(t *testing.T) {
	b, err := ParseBirthday("1985-01-25")
	be.Err(t, err, nil)
	be.Equal(t, b, Birthday{Year: 1985, Month: 1, Day: 25})
	be.True(t, b.HasYear())
	be.Equal(t, b.MonthDay(), "01-25")
	be.Equal(t, b.String(), "1985-01-25")

	b, err = ParseBirthday("--01-25")
	be.Err(t, err, nil)
	be.Equal(t, b, Birthday{Month: 1, Day: 25})
	be.True(t, !b.HasYear())
	be.Equal(t, b.String(), "--01-25")

	// Apple's sentinel year collapses to year-less.
	b, err = ParseBirthday("1604-06-01")
	be.Err(t, err, nil)
	be.True(t, !b.HasYear())
	be.Equal(t, b.MonthDay(), "06-01")

	b, err = ParseBirthday("")
	be.Err(t, err, nil)
	be.True(t, b.IsZero())
	be.Equal(t, b.String(), "")
	be.Equal(t, b.MonthDay(), "")
}

func TestParseBirthdayInvalid(t *testing.T) {
	_, err := ParseBirthday("not-a-date")
	be.Err(t, err)
	_, err = ParseBirthday("1985-13-01")
	be.Err(t, err)
	_, err = ParseBirthday("1985-00-10")
	be.Err(t, err)
}

func TestBirthdayJSONRoundTrip(t *testing.T) {
	type holder struct {
		Birthday Birthday `json:"birthday"`
	}

	raw, err := json.Marshal(holder{Birthday: Birthday{Month: 2, Day: 14}})
	be.Err(t, err, nil)
	be.Equal(t, string(raw), `{"birthday":"--02-14"}`)

	var h holder
	be.Err(t, json.Unmarshal([]byte(`{"birthday":"1990-12-31"}`), &h), nil)
	be.Equal(t, h.Birthday, Birthday{Year: 1990, Month: 12, Day: 31})

	be.Err(t, json.Unmarshal([]byte(`{"birthday":""}`), &h), nil)
	be.True(t, h.Birthday.IsZero())
}
