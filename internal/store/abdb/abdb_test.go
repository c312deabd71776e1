package abdb

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nalgeon/be"

	"github.com/spachava753/abook/internal/contacts"
)

// openFixture builds a miniature AddressBook database with the schema
// surface the adapter touches and opens a Store over it.
func openFixture(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "AddressBook-v22.abcddb")
	db, err := sql.Open("sqlite3", "file:"+path)
	be.Err(t, err, nil)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE Z_PRIMARYKEY (Z_ENT INTEGER, Z_NAME VARCHAR, Z_SUPER INTEGER, Z_MAX INTEGER)`,
		`INSERT INTO Z_PRIMARYKEY VALUES (15, 'ABCDContact', 19, 4), (16, 'ABCDGroup', 19, 2)`,
		`CREATE TABLE ZABCDRECORD (
			Z_PK INTEGER PRIMARY KEY, Z_ENT INTEGER, ZUNIQUEID VARCHAR, ZNAME VARCHAR,
			ZFIRSTNAME VARCHAR, ZLASTNAME VARCHAR, ZMIDDLENAME VARCHAR, ZNICKNAME VARCHAR,
			ZORGANIZATION VARCHAR, ZDEPARTMENT VARCHAR, ZJOBTITLE VARCHAR, ZBIRTHDAY TIMESTAMP
		)`,
		`CREATE TABLE ZABCDPHONENUMBER (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZLABEL VARCHAR, ZFULLNUMBER VARCHAR)`,
		`CREATE TABLE ZABCDEMAILADDRESS (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZLABEL VARCHAR, ZADDRESS VARCHAR)`,
		`CREATE TABLE ZABCDPOSTALADDRESS (
			Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZLABEL VARCHAR, ZSTREET VARCHAR,
			ZCITY VARCHAR, ZSTATE VARCHAR, ZZIPCODE VARCHAR, ZCOUNTRYNAME VARCHAR
		)`,
		`CREATE TABLE ZABCDURLADDRESS (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZLABEL VARCHAR, ZURL VARCHAR)`,
		`CREATE TABLE ZABCDSOCIALPROFILE (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZSERVICENAME VARCHAR, ZUSERNAME VARCHAR)`,
		`CREATE TABLE ZABCDRELATEDNAME (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZLABEL VARCHAR, ZNAME VARCHAR)`,
		`CREATE TABLE ZABCDNOTE (Z_PK INTEGER PRIMARY KEY, ZCONTACT INTEGER, ZTEXT VARCHAR)`,
		`CREATE TABLE Z_15PARENTGROUPS (Z_15CONTACTS INTEGER, Z_16PARENTGROUPS INTEGER)`,

		// Contacts. Z_PK order is the store order the adapter must keep.
		// -504489600 is 1985-01-06T00:00:00Z relative to the reference date.
		// -12502944000 is 1604-10-19, the sentinel year for year-less birthdays.
		`INSERT INTO ZABCDRECORD (Z_PK, Z_ENT, ZUNIQUEID, ZFIRSTNAME, ZLASTNAME, ZNICKNAME, ZORGANIZATION, ZDEPARTMENT, ZJOBTITLE, ZBIRTHDAY)
			VALUES (1, 15, 'UID-1:ABPerson', 'Erik', 'Fisher', 'Fish', 'Acme', 'Platform', 'Engineer', -504489600)`,
		`INSERT INTO ZABCDRECORD (Z_PK, Z_ENT, ZUNIQUEID, ZFIRSTNAME, ZLASTNAME, ZBIRTHDAY)
			VALUES (2, 15, 'UID-2:ABPerson', 'Jane', 'Doe', -12502944000)`,
		`INSERT INTO ZABCDRECORD (Z_PK, Z_ENT, ZUNIQUEID, ZORGANIZATION)
			VALUES (3, 15, 'UID-3:ABPerson', 'Globex Corporation')`,

		// Groups.
		`INSERT INTO ZABCDRECORD (Z_PK, Z_ENT, ZUNIQUEID, ZNAME) VALUES (10, 16, 'UID-G1:ABGroup', 'Work')`,
		`INSERT INTO ZABCDRECORD (Z_PK, Z_ENT, ZUNIQUEID, ZNAME) VALUES (11, 16, 'UID-G2:ABGroup', 'Empty')`,
		`INSERT INTO Z_15PARENTGROUPS VALUES (1, 10), (3, 10)`,

		`INSERT INTO ZABCDPHONENUMBER (ZOWNER, ZLABEL, ZFULLNUMBER) VALUES (1, '_$!<Mobile>!$_', '+1 (555) 123-4567')`,
		`INSERT INTO ZABCDEMAILADDRESS (ZOWNER, ZLABEL, ZADDRESS) VALUES (1, '_$!<Work>!$_', 'erik@acme.example')`,
		`INSERT INTO ZABCDEMAILADDRESS (ZOWNER, ZLABEL, ZADDRESS) VALUES (2, '_$!<Home>!$_', 'jane@doe.example')`,
		`INSERT INTO ZABCDPOSTALADDRESS (ZOWNER, ZLABEL, ZSTREET, ZCITY, ZSTATE, ZZIPCODE, ZCOUNTRYNAME)
			VALUES (1, '_$!<Home>!$_', '1 Main St', 'Springfield', 'IL', '62701', 'USA')`,
		`INSERT INTO ZABCDURLADDRESS (ZOWNER, ZLABEL, ZURL) VALUES (1, '_$!<HomePage>!$_', 'https://erik.example')`,
		`INSERT INTO ZABCDSOCIALPROFILE (ZOWNER, ZSERVICENAME, ZUSERNAME) VALUES (1, 'GitHub', 'erikf')`,
		`INSERT INTO ZABCDRELATEDNAME (ZOWNER, ZLABEL, ZNAME) VALUES (1, '_$!<Spouse>!$_', 'Dana Fisher')`,
		`INSERT INTO ZABCDNOTE (ZCONTACT, ZTEXT) VALUES (1, 'VIP customer')`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		be.Err(t, err, nil)
	}
	be.Err(t, db.Close(), nil)

	store, err := Open(path, nil)
	be.Err(t, err, nil)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.abcddb"), nil)
	be.Err(t, err)
	be.Equal(t, contacts.CodeOf(err), contacts.ErrorCodeStore)
}

func TestAuthorizationStatus(t *testing.T) {
	store := openFixture(t)

	status, err := store.AuthorizationStatus()
	be.Err(t, err, nil)
	be.Equal(t, status, contacts.AuthStatusAuthorized)

	status, err = AuthorizationStatus(filepath.Join(t.TempDir(), "nope.abcddb"))
	be.Err(t, err, nil)
	be.Equal(t, status, contacts.AuthStatusNotDetermined)

	if os.Geteuid() != 0 {
		locked := filepath.Join(t.TempDir(), "locked.abcddb")
		be.Err(t, os.WriteFile(locked, []byte("x"), 0o000), nil)
		status, err = AuthorizationStatus(locked)
		be.Err(t, err, nil)
		be.Equal(t, status, contacts.AuthStatusDenied)
	}
}

func TestContactsBasicDetail(t *testing.T) {
	store := openFixture(t)

	list, err := store.Contacts(contacts.DetailBasic)
	be.Err(t, err, nil)
	be.Equal(t, len(list), 3)

	erik := list[0]
	be.Equal(t, erik.ID, "UID-1:ABPerson")
	be.Equal(t, erik.Name, "Erik Fisher")
	be.Equal(t, erik.Nickname, "Fish")
	be.Equal(t, erik.Organization, "Acme")
	be.Equal(t, erik.Birthday.String(), "1985-01-06")
	be.Equal(t, len(erik.Phones), 1)
	be.Equal(t, erik.Phones[0].Label, "mobile")
	be.Equal(t, erik.Phones[0].Value, "+1 (555) 123-4567")
	be.Equal(t, len(erik.Emails), 1)

	// Basic detail leaves the full-only collections unset.
	be.Equal(t, erik.Note, "")
	be.Equal(t, len(erik.Addresses), 0)

	// Sentinel-year birthdays come back year-less.
	be.Equal(t, list[1].Birthday.String(), "--10-19")
	be.Equal(t, list[1].Birthday.HasYear(), false)

	// Company records display their organization.
	be.Equal(t, list[2].Name, "Globex Corporation")
}

func TestContactByID(t *testing.T) {
	store := openFixture(t)

	c, err := store.ContactByID("UID-1:ABPerson")
	be.Err(t, err, nil)
	be.True(t, c != nil)
	be.Equal(t, c.Name, "Erik Fisher")
	be.Equal(t, c.Note, "VIP customer")
	be.Equal(t, len(c.Addresses), 1)
	be.Equal(t, c.Addresses[0].Label, "home")
	be.Equal(t, c.Addresses[0].City, "Springfield")
	be.Equal(t, len(c.URLs), 1)
	be.Equal(t, len(c.SocialProfiles), 1)
	be.Equal(t, c.SocialProfiles[0].Label, "github")
	be.Equal(t, len(c.Relations), 1)

	c, err = store.ContactByID("UID-404:ABPerson")
	be.Err(t, err, nil)
	be.True(t, c == nil)
}

func TestContactsByName(t *testing.T) {
	store := openFixture(t)

	list, err := store.ContactsByName("fisher")
	be.Err(t, err, nil)
	be.Equal(t, len(list), 1)
	be.Equal(t, list[0].ID, "UID-1:ABPerson")

	// Nickname participates in the name predicate.
	list, err = store.ContactsByName("fish")
	be.Err(t, err, nil)
	be.Equal(t, len(list), 1)

	// Company records match on organization.
	list, err = store.ContactsByName("globex")
	be.Err(t, err, nil)
	be.Equal(t, len(list), 1)
	be.Equal(t, list[0].Name, "Globex Corporation")

	// LIKE wildcards in the term are literal characters.
	list, err = store.ContactsByName("%")
	be.Err(t, err, nil)
	be.Equal(t, len(list), 0)
}

func TestGroupMembers(t *testing.T) {
	store := openFixture(t)

	list, err := store.GroupMembers("Work")
	be.Err(t, err, nil)
	be.Equal(t, len(list), 2)
	be.Equal(t, list[0].ID, "UID-1:ABPerson")
	be.Equal(t, list[1].ID, "UID-3:ABPerson")

	list, err = store.GroupMembers("Empty")
	be.Err(t, err, nil)
	be.Equal(t, len(list), 0)

	_, err = store.GroupMembers("Family")
	be.Err(t, err)
	be.Equal(t, contacts.CodeOf(err), contacts.ErrorCodeGroupNotFound)
}

func TestGroups(t *testing.T) {
	store := openFixture(t)

	groups, err := store.Groups()
	be.Err(t, err, nil)
	be.Equal(t, len(groups), 2)
	be.Equal(t, groups[0].Name, "Work")
	be.Equal(t, groups[0].Count, 2)
	be.Equal(t, groups[1].Name, "Empty")
	be.Equal(t, groups[1].Count, 0)
}
