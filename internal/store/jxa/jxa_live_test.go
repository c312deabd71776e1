package jxa

import (
	"os"
	"testing"

	"github.com/nalgeon/be"
	"github.com/spachava753/abook/internal/contacts"
)

const jxaLiveTestEnv = "ABOOK_JXA_LIVE_TEST"

// TestLiveListAndGroups exercises the real Contacts application. It needs a
// macOS session with automation consent already granted.
func TestLiveListAndGroups(t *testing.T) {
	if os.Getenv(jxaLiveTestEnv) != "1" {
		t.Skipf("set %s=1 to run live Contacts integration tests", jxaLiveTestEnv)
	}

	store := New(nil)

	status, err := store.AuthorizationStatus()
	be.Err(t, err, nil)
	if status != contacts.AuthStatusAuthorized {
		t.Skipf("contacts automation consent is required (status %s)", status)
	}

	list, err := store.Contacts(contacts.DetailBasic)
	be.Err(t, err, nil)
	for _, c := range list {
		be.True(t, c.ID != "")
	}

	groups, err := store.Groups()
	be.Err(t, err, nil)
	for _, g := range groups {
		be.True(t, g.Name != "")
		be.True(t, g.Count >= 0)
	}

	if len(list) > 0 {
		full, err := store.ContactByID(list[0].ID)
		be.Err(t, err, nil)
		be.True(t, full != nil)
		be.Equal(t, full.ID, list[0].ID)
	}
}
