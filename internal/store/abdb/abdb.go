// Package abdb is the direct-database contact repository. It reads the
// AddressBook sqlite database that backs the Contacts application, strictly
// read-only, without going through the application at all.
package abdb

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spachava753/abook/internal/contacts"
)

const (
	addressBookRelativePath = "Library/Application Support/AddressBook/AddressBook-v22.abcddb"

	// Core Data reference date, 2001-01-01T00:00:00Z. Birthdays are stored
	// as seconds relative to it.
	appleReferenceUnix = int64(978307200)
)

// DefaultPath returns the current user's AddressBook database path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("address book: unable to resolve home directory: %w", err)
	}
	return filepath.Join(home, addressBookRelativePath), nil
}

// AuthorizationStatus maps database file state to a permission status: a
// readable file is authorized, a permission error is denied (the process
// lacks full-disk access), and a missing file means access has never been
// provisioned on this machine.
func AuthorizationStatus(path string) (contacts.AuthStatus, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return "", err
		}
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		f.Close()
		return contacts.AuthStatusAuthorized, nil
	case os.IsPermission(err):
		return contacts.AuthStatusDenied, nil
	case os.IsNotExist(err):
		return contacts.AuthStatusNotDetermined, nil
	default:
		return "", fmt.Errorf("address book: probing %s failed: %w", path, err)
	}
}

// Store reads one AddressBook database. It holds a read-only connection for
// the duration of a command invocation.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger

	contactEnt int
	groupEnt   int
	join       groupJoin
}

// groupJoin describes the schema-versioned many-to-many table linking
// groups to their member records. Its name and column names carry Core Data
// entity numbers, so they are discovered at open time instead of being
// hard-coded.
type groupJoin struct {
	table     string
	groupCol  string
	memberCol string
}

// Open opens the AddressBook database read-only. An empty path means the
// current user's default database. A nil logger disables debug logging.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "%v", err)
		}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsPermission(err) {
			return nil, contacts.Errorf(contacts.ErrorCodeAccessDenied, "address book database is not readable at %s", path)
		}
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "address book database unavailable at %s: %v", path, err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", strings.ReplaceAll(path, " ", "%20"))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "opening address book database failed: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "connecting to address book database failed: %v", err)
	}

	store := &Store{db: db, path: path, log: log}
	if err := store.loadSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// loadSchema resolves the Core Data entity numbers for contacts and groups
// and discovers the group membership join table.
func (s *Store) loadSchema() error {
	rows, err := s.db.Query(`SELECT Z_ENT, Z_NAME FROM Z_PRIMARYKEY WHERE Z_NAME IN ('ABCDContact', 'ABCDGroup')`)
	if err != nil {
		return contacts.Errorf(contacts.ErrorCodeStore, "reading entity catalog failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ent int
		var name string
		if err := rows.Scan(&ent, &name); err != nil {
			return contacts.Errorf(contacts.ErrorCodeStore, "scanning entity catalog failed: %v", err)
		}
		switch name {
		case "ABCDContact":
			s.contactEnt = ent
		case "ABCDGroup":
			s.groupEnt = ent
		}
	}
	if err := rows.Err(); err != nil {
		return contacts.Errorf(contacts.ErrorCodeStore, "reading entity catalog failed: %v", err)
	}
	if s.contactEnt == 0 || s.groupEnt == 0 {
		return contacts.Errorf(contacts.ErrorCodeStore, "unrecognized address book schema at %s", s.path)
	}

	join, err := discoverGroupJoin(s.db)
	if err != nil {
		return err
	}
	s.join = join
	s.log.Debug("address book schema loaded",
		"contact_ent", s.contactEnt, "group_ent", s.groupEnt, "join_table", join.table)
	return nil
}

func discoverGroupJoin(db *sql.DB) (groupJoin, error) {
	var table string
	err := db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'Z\_%PARENTGROUPS%' ESCAPE '\' LIMIT 1`,
	).Scan(&table)
	if err != nil {
		return groupJoin{}, contacts.Errorf(contacts.ErrorCodeStore, "locating group membership table failed: %v", err)
	}

	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return groupJoin{}, contacts.Errorf(contacts.ErrorCodeStore, "inspecting group membership table failed: %v", err)
	}
	defer rows.Close()

	join := groupJoin{table: table}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return groupJoin{}, contacts.Errorf(contacts.ErrorCodeStore, "inspecting group membership table failed: %v", err)
		}
		if strings.Contains(name, "PARENTGROUPS") {
			join.groupCol = name
		} else if strings.HasPrefix(name, "Z_") {
			join.memberCol = name
		}
	}
	if err := rows.Err(); err != nil {
		return groupJoin{}, contacts.Errorf(contacts.ErrorCodeStore, "inspecting group membership table failed: %v", err)
	}
	if join.groupCol == "" || join.memberCol == "" {
		return groupJoin{}, contacts.Errorf(contacts.ErrorCodeStore, "unrecognized group membership table %s", table)
	}
	return join, nil
}

// AuthorizationStatus reports the database file's permission state.
func (s *Store) AuthorizationStatus() (contacts.AuthStatus, error) {
	return AuthorizationStatus(s.path)
}

const recordColumns = `r.Z_PK, ifnull(r.ZUNIQUEID, ''), ifnull(r.ZFIRSTNAME, ''), ifnull(r.ZLASTNAME, ''),
	ifnull(r.ZMIDDLENAME, ''), ifnull(r.ZNICKNAME, ''), ifnull(r.ZORGANIZATION, ''),
	ifnull(r.ZDEPARTMENT, ''), ifnull(r.ZJOBTITLE, ''), r.ZBIRTHDAY`

// ContactByID returns the full-detail contact with the given unique id, or
// nil when absent.
func (s *Store) ContactByID(id string) (*contacts.Contact, error) {
	list, err := s.queryContacts("r.ZUNIQUEID = ?", []any{id}, contacts.DetailFull)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// ContactsByName runs a contains predicate over the composed display name
// and nickname, mirroring the application's native name search.
func (s *Store) ContactsByName(term string) ([]contacts.Contact, error) {
	needle := "%" + escapeLike(strings.ToLower(term)) + "%"
	where := `(
		lower(trim(ifnull(r.ZFIRSTNAME, '') || ' ' || ifnull(r.ZLASTNAME, ''))) LIKE ? ESCAPE '\'
		OR lower(ifnull(r.ZNICKNAME, '')) LIKE ? ESCAPE '\'
		OR (ifnull(r.ZFIRSTNAME, '') = '' AND ifnull(r.ZLASTNAME, '') = ''
			AND lower(ifnull(r.ZORGANIZATION, '')) LIKE ? ESCAPE '\')
	)`
	return s.queryContacts(where, []any{needle, needle, needle}, contacts.DetailBasic)
}

// Contacts enumerates every contact in record order.
func (s *Store) Contacts(detail contacts.Detail) ([]contacts.Contact, error) {
	return s.queryContacts("", nil, detail)
}

// GroupMembers returns the members of the named group in record order. A
// missing group is group_not_found; an empty group is an empty list.
func (s *Store) GroupMembers(name string) ([]contacts.Contact, error) {
	var groupPK int64
	err := s.db.QueryRow(
		`SELECT Z_PK FROM ZABCDRECORD WHERE Z_ENT = ? AND ZNAME = ?`, s.groupEnt, name,
	).Scan(&groupPK)
	if err == sql.ErrNoRows {
		return nil, contacts.Errorf(contacts.ErrorCodeGroupNotFound, "group %q not found", name)
	}
	if err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "looking up group failed: %v", err)
	}

	where := fmt.Sprintf(`r.Z_PK IN (SELECT %s FROM %q WHERE %s = ?)`,
		s.join.memberCol, s.join.table, s.join.groupCol)
	return s.queryContacts(where, []any{groupPK}, contacts.DetailBasic)
}

// Groups lists every group with its member count, one count query per
// group.
func (s *Store) Groups() ([]contacts.Group, error) {
	rows, err := s.db.Query(
		`SELECT Z_PK, ifnull(ZNAME, '') FROM ZABCDRECORD WHERE Z_ENT = ? ORDER BY Z_PK`, s.groupEnt,
	)
	if err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "listing groups failed: %v", err)
	}
	defer rows.Close()

	type groupRow struct {
		pk   int64
		name string
	}
	var groupRows []groupRow
	for rows.Next() {
		var g groupRow
		if err := rows.Scan(&g.pk, &g.name); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "scanning group failed: %v", err)
		}
		groupRows = append(groupRows, g)
	}
	if err := rows.Err(); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "listing groups failed: %v", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE %s = ?`, s.join.table, s.join.groupCol)
	groups := make([]contacts.Group, 0, len(groupRows))
	for _, g := range groupRows {
		var count int
		if err := s.db.QueryRow(countQuery, g.pk).Scan(&count); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "counting group members failed: %v", err)
		}
		groups = append(groups, contacts.Group{Name: g.name, Count: count})
	}
	return groups, nil
}

func (s *Store) queryContacts(where string, args []any, detail contacts.Detail) ([]contacts.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM ZABCDRECORD r WHERE r.Z_ENT = ?`, recordColumns)
	queryArgs := append([]any{s.contactEnt}, args...)
	if where != "" {
		query += " AND " + where
	}
	query += " ORDER BY r.Z_PK"

	rows, err := s.db.Query(query, queryArgs...)
	if err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying contacts failed: %v", err)
	}
	defer rows.Close()

	list := make([]contacts.Contact, 0, 64)
	pks := make([]int64, 0, 64)
	for rows.Next() {
		var (
			pk       int64
			c        contacts.Contact
			birthday sql.NullFloat64
		)
		if err := rows.Scan(&pk, &c.ID, &c.FirstName, &c.LastName, &c.MiddleName,
			&c.Nickname, &c.Organization, &c.Department, &c.JobTitle, &birthday); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "scanning contact failed: %v", err)
		}
		c.Name = displayName(c)
		if birthday.Valid {
			c.Birthday = birthdayFromAppleSeconds(birthday.Float64)
		}
		list = append(list, c)
		pks = append(pks, pk)
	}
	if err := rows.Err(); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying contacts failed: %v", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	if err := s.attachCollections(list, pks, detail); err != nil {
		return nil, err
	}
	return list, nil
}

// attachCollections loads labeled value tables in bulk and distributes the
// rows to their owning contacts. Basic detail carries phones and emails;
// full detail adds note, addresses, urls, social profiles and relations.
func (s *Store) attachCollections(list []contacts.Contact, pks []int64, detail contacts.Detail) error {
	index := make(map[int64]int, len(list))
	for i, pk := range pks {
		index[pk] = i
	}

	phones, err := s.labeledValues(`SELECT ZOWNER, ifnull(ZLABEL, ''), ifnull(ZFULLNUMBER, '') FROM ZABCDPHONENUMBER ORDER BY Z_PK`)
	if err != nil {
		return err
	}
	emails, err := s.labeledValues(`SELECT ZOWNER, ifnull(ZLABEL, ''), ifnull(ZADDRESS, '') FROM ZABCDEMAILADDRESS ORDER BY Z_PK`)
	if err != nil {
		return err
	}
	for pk, i := range index {
		list[i].Phones = phones[pk]
		list[i].Emails = emails[pk]
	}
	if detail != contacts.DetailFull {
		return nil
	}

	addresses, err := s.postalAddresses()
	if err != nil {
		return err
	}
	urls, err := s.labeledValues(`SELECT ZOWNER, ifnull(ZLABEL, ''), ifnull(ZURL, '') FROM ZABCDURLADDRESS ORDER BY Z_PK`)
	if err != nil {
		return err
	}
	profiles, err := s.labeledValues(`SELECT ZOWNER, ifnull(ZSERVICENAME, ''), ifnull(ZUSERNAME, '') FROM ZABCDSOCIALPROFILE ORDER BY Z_PK`)
	if err != nil {
		return err
	}
	relations, err := s.labeledValues(`SELECT ZOWNER, ifnull(ZLABEL, ''), ifnull(ZNAME, '') FROM ZABCDRELATEDNAME ORDER BY Z_PK`)
	if err != nil {
		return err
	}
	notes, err := s.notes()
	if err != nil {
		return err
	}
	for pk, i := range index {
		list[i].Addresses = addresses[pk]
		list[i].URLs = urls[pk]
		list[i].SocialProfiles = profiles[pk]
		list[i].Relations = relations[pk]
		list[i].Note = notes[pk]
	}
	return nil
}

func (s *Store) labeledValues(query string) (map[int64][]contacts.LabeledValue, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying labeled values failed: %v", err)
	}
	defer rows.Close()

	out := make(map[int64][]contacts.LabeledValue)
	for rows.Next() {
		var (
			owner        sql.NullInt64
			label, value string
		)
		if err := rows.Scan(&owner, &label, &value); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "scanning labeled value failed: %v", err)
		}
		if !owner.Valid || value == "" {
			continue
		}
		out[owner.Int64] = append(out[owner.Int64], contacts.LabeledValue{
			Label: contacts.NormalizeLabel(label),
			Value: value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying labeled values failed: %v", err)
	}
	return out, nil
}

func (s *Store) postalAddresses() (map[int64][]contacts.Address, error) {
	rows, err := s.db.Query(`SELECT ZOWNER, ifnull(ZLABEL, ''), ifnull(ZSTREET, ''), ifnull(ZCITY, ''),
		ifnull(ZSTATE, ''), ifnull(ZZIPCODE, ''), ifnull(ZCOUNTRYNAME, '')
		FROM ZABCDPOSTALADDRESS ORDER BY Z_PK`)
	if err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying postal addresses failed: %v", err)
	}
	defer rows.Close()

	out := make(map[int64][]contacts.Address)
	for rows.Next() {
		var (
			owner sql.NullInt64
			a     contacts.Address
		)
		if err := rows.Scan(&owner, &a.Label, &a.Street, &a.City, &a.State, &a.Zip, &a.Country); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "scanning postal address failed: %v", err)
		}
		if !owner.Valid {
			continue
		}
		a.Label = contacts.NormalizeLabel(a.Label)
		out[owner.Int64] = append(out[owner.Int64], a)
	}
	if err := rows.Err(); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying postal addresses failed: %v", err)
	}
	return out, nil
}

func (s *Store) notes() (map[int64]string, error) {
	rows, err := s.db.Query(`SELECT ZCONTACT, ifnull(ZTEXT, '') FROM ZABCDNOTE`)
	if err != nil {
		// The note table needs a separate entitlement on newer systems;
		// degrade to empty notes rather than fail the fetch.
		return map[int64]string{}, nil
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var (
			owner sql.NullInt64
			text  string
		)
		if err := rows.Scan(&owner, &text); err != nil {
			return nil, contacts.Errorf(contacts.ErrorCodeStore, "scanning note failed: %v", err)
		}
		if owner.Valid {
			out[owner.Int64] = text
		}
	}
	if err := rows.Err(); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "querying notes failed: %v", err)
	}
	return out, nil
}

// displayName composes the application's display form from name parts,
// falling back to organization and nickname for companies and
// nickname-only records.
func displayName(c contacts.Contact) string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name != "" {
		return name
	}
	if c.Organization != "" {
		return c.Organization
	}
	return c.Nickname
}

// birthdayFromAppleSeconds converts a Core Data timestamp to a Birthday.
// Year-less birthdays are stored in Apple's sentinel reference year.
func birthdayFromAppleSeconds(seconds float64) contacts.Birthday {
	t := time.Unix(appleReferenceUnix+int64(seconds), 0).UTC()
	year, month, day := t.Date()
	b := contacts.Birthday{Year: year, Month: int(month), Day: day}
	if year <= 1604 {
		b.Year = 0
	}
	return b
}

// escapeLike escapes LIKE wildcards so criteria text is always literal.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
