package abdb

import (
	"os"
	"testing"

	"github.com/nalgeon/be"

	"github.com/spachava753/abook/internal/contacts"
)

// TestLiveAddressBook reads the current user's real AddressBook database.
// It requires full-disk access and an actual contact store, so it only runs
// when explicitly requested:
//
//	ABOOK_ABDB_LIVE_TEST=1 go test ./internal/store/abdb/ -run TestLiveAddressBook -v
func TestLiveAddressBook(t *testing.T) {
	if os.Getenv("ABOOK_ABDB_LIVE_TEST") != "1" {
		t.Skipf("skipping live test; set ABOOK_ABDB_LIVE_TEST=1 to run")
	}

	status, err := AuthorizationStatus("")
	be.Err(t, err, nil)
	if status != contacts.AuthStatusAuthorized {
		t.Skipf("address book database not readable (status %s)", status)
	}

	store, err := Open("", nil)
	be.Err(t, err, nil)
	defer store.Close()

	list, err := store.Contacts(contacts.DetailBasic)
	be.Err(t, err, nil)
	t.Logf("found %d contacts", len(list))
	for _, c := range list {
		be.True(t, c.ID != "")
	}

	groups, err := store.Groups()
	be.Err(t, err, nil)
	t.Logf("found %d groups", len(groups))

	if len(list) > 0 {
		c, err := store.ContactByID(list[0].ID)
		be.Err(t, err, nil)
		be.True(t, c != nil)
		be.Equal(t, c.ID, list[0].ID)
	}
}
