// Package engine implements the query/filter engine over an abstract
// contact repository. It chooses the cheapest viable retrieval strategy for
// a set of criteria, applies field matchers with AND semantics, and
// deduplicates by identifier while preserving store order.
package engine

import (
	"strings"

	"github.com/spachava753/abook/internal/contacts"
)

// Repository is the store abstraction the engine depends on. Both the
// scripting-bridge adapter and the direct-database adapter implement it.
// All operations are read-only, blocking round-trips.
type Repository interface {
	// AuthorizationStatus reports Contacts permission state for the
	// current process.
	AuthorizationStatus() (contacts.AuthStatus, error)

	// ContactByID returns the full-detail contact with the given opaque
	// identifier, or nil when no such contact exists.
	ContactByID(id string) (*contacts.Contact, error)

	// ContactsByName runs the store-native "contains" predicate over name
	// (and nickname where the store supports it) and returns basic-detail
	// matches in store order.
	ContactsByName(term string) ([]contacts.Contact, error)

	// Contacts enumerates every contact at the requested detail level, in
	// store order. May be arbitrarily large.
	Contacts(detail contacts.Detail) ([]contacts.Contact, error)

	// GroupMembers returns the basic-detail members of the named group.
	// A missing group is a group_not_found error, not an empty list.
	GroupMembers(name string) ([]contacts.Contact, error)

	// Groups returns every group with its computed member count.
	Groups() ([]contacts.Group, error)
}

// Criteria is the immutable set of optional search filters for one query.
// Empty fields are not applied; all supplied fields combine with AND
// semantics, except Any which searches every text field on its own.
type Criteria struct {
	Name          string
	Email         string
	Phone         string
	Organization  string
	Note          string
	Address       string
	Birthday      string // exact "MM-DD" match
	BirthdayMonth int    // 1-12
	Any           string
	Limit         int
}

// Empty reports whether no search criterion is supplied. Limit alone does
// not constitute a query.
func (c Criteria) Empty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == "" &&
		c.Organization == "" && c.Note == "" && c.Address == "" &&
		c.Birthday == "" && c.BirthdayMonth == 0 && c.Any == ""
}

type matcher func(contacts.Contact) bool

// matchers returns one predicate per supplied structured criterion,
// excluding the bare name term which has its own retrieval strategy.
func (c Criteria) matchers() []matcher {
	var ms []matcher
	if c.Email != "" {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchEmail(ct, c.Email) })
	}
	if c.Phone != "" {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchPhone(ct, c.Phone) })
	}
	if c.Organization != "" {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchOrganization(ct, c.Organization) })
	}
	if c.Note != "" {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchNote(ct, c.Note) })
	}
	if c.Address != "" {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchAddress(ct, c.Address) })
	}
	if c.Birthday != "" {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchBirthday(ct, c.Birthday) })
	}
	if c.BirthdayMonth != 0 {
		ms = append(ms, func(ct contacts.Contact) bool { return contacts.MatchBirthdayMonth(ct, c.BirthdayMonth) })
	}
	return ms
}

// Engine executes read-only queries against a Repository.
type Engine struct {
	repo Repository
}

// New returns an Engine over repo.
func New(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Status reports the store's authorization state for the current process.
func (e *Engine) Status() (contacts.AuthStatus, error) {
	return e.repo.AuthorizationStatus()
}

// checkAccess fails fast with access_denied when the store reports denied or
// restricted permission. Not-determined passes through so the store's own
// permission prompt can run.
func (e *Engine) checkAccess() error {
	status, err := e.repo.AuthorizationStatus()
	if err != nil {
		return err
	}
	if status == contacts.AuthStatusDenied || status == contacts.AuthStatusRestricted {
		return contacts.Errorf(contacts.ErrorCodeAccessDenied, "contacts access is %s", status)
	}
	return nil
}

// Search evaluates criteria and returns matches deduplicated by identifier
// in store order. The limit is applied last, after all filtering, so AND
// combination never sees a truncated candidate set.
func (e *Engine) Search(crit Criteria) ([]contacts.Contact, error) {
	if crit.Empty() {
		return nil, contacts.Errorf(contacts.ErrorCodeInvalidQuery, "no search criteria supplied")
	}
	if err := e.checkAccess(); err != nil {
		return nil, err
	}

	results, err := e.search(crit)
	if err != nil {
		return nil, err
	}
	if crit.Limit > 0 && len(results) > crit.Limit {
		results = results[:crit.Limit]
	}
	return results, nil
}

func (e *Engine) search(crit Criteria) ([]contacts.Contact, error) {
	// "Any" searches everything and ignores the other criteria.
	if crit.Any != "" {
		all, err := e.repo.Contacts(contacts.DetailFull)
		if err != nil {
			return nil, err
		}
		var results []contacts.Contact
		for _, c := range all {
			if contacts.MatchAny(c, crit.Any) {
				results = append(results, c)
			}
		}
		return dedupeByID(results), nil
	}

	extra := crit.matchers()

	if crit.Name != "" && len(extra) == 0 {
		return e.searchByName(crit.Name)
	}

	// One full enumeration covers every structured matcher.
	all, err := e.repo.Contacts(contacts.DetailFull)
	if err != nil {
		return nil, err
	}

	if crit.Name == "" {
		var results []contacts.Contact
		for _, c := range all {
			if matchesAll(c, extra) {
				results = append(results, c)
			}
		}
		return dedupeByID(results), nil
	}

	// Bare term plus structured filters: the name-predicate result set is
	// the ordered candidate base; its identifiers are intersected with the
	// identifier set of every additional criterion.
	base, err := e.repo.ContactsByName(crit.Name)
	if err != nil {
		return nil, err
	}
	full := make(map[string]contacts.Contact, len(all))
	for _, c := range all {
		full[c.ID] = c
	}

	seen := make(map[string]bool, len(base))
	var results []contacts.Contact
	for _, c := range base {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		hydrated, ok := full[c.ID]
		if !ok {
			hydrated = c
		}
		if matchesAll(hydrated, extra) {
			results = append(results, hydrated)
		}
	}
	return results, nil
}

// searchByName is the fast path for a bare term: store-native predicate
// matches first, then enumerate-and-filter nickname matches the predicate
// did not already capture, merged in first-seen order.
func (e *Engine) searchByName(term string) ([]contacts.Contact, error) {
	byName, err := e.repo.ContactsByName(term)
	if err != nil {
		return nil, err
	}

	all, err := e.repo.Contacts(contacts.DetailBasic)
	if err != nil {
		return nil, err
	}

	results := dedupeByID(byName)
	seen := make(map[string]bool, len(results))
	for _, c := range results {
		seen[c.ID] = true
	}
	for _, c := range all {
		if !seen[c.ID] && contacts.MatchNickname(c, term) {
			seen[c.ID] = true
			results = append(results, c)
		}
	}
	return results, nil
}

func matchesAll(c contacts.Contact, ms []matcher) bool {
	for _, m := range ms {
		if !m(c) {
			return false
		}
	}
	return true
}

func dedupeByID(list []contacts.Contact) []contacts.Contact {
	seen := make(map[string]bool, len(list))
	out := list[:0:0]
	for _, c := range list {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// Resolve turns exactly one of name or id into a single full-detail
// contact.
//
// By id the lookup is exact and a miss is not_found. By name, an exact
// case-insensitive name match among the predicate candidates wins;
// otherwise the first candidate in store order is returned, which may pick
// an arbitrary duplicate. Callers are expected to offer --id disambiguation
// as the escape hatch.
func (e *Engine) Resolve(name, id string) (*contacts.Contact, error) {
	name = strings.TrimSpace(name)
	id = strings.TrimSpace(id)
	if (name == "") == (id == "") {
		return nil, contacts.Errorf(contacts.ErrorCodeInvalidQuery, "provide a name or an id, but not both")
	}
	if err := e.checkAccess(); err != nil {
		return nil, err
	}

	if id != "" {
		c, err := e.repo.ContactByID(id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, contacts.Errorf(contacts.ErrorCodeNotFound, "contact not found with id %q", id)
		}
		return c, nil
	}

	candidates, err := e.repo.ContactsByName(name)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, contacts.Errorf(contacts.ErrorCodeNotFound, "contact not found: %s", name)
	}

	pick := candidates[0]
	for _, c := range candidates {
		if strings.EqualFold(c.Name, name) {
			pick = c
			break
		}
	}

	full, err := e.repo.ContactByID(pick.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, contacts.Errorf(contacts.ErrorCodeNotFound, "contact not found: %s", name)
	}
	return full, nil
}

// List returns every contact, or the members of the named group. A positive
// limit truncates the ordered result.
func (e *Engine) List(group string, limit int) ([]contacts.Contact, error) {
	if err := e.checkAccess(); err != nil {
		return nil, err
	}

	var (
		results []contacts.Contact
		err     error
	)
	if group != "" {
		results, err = e.repo.GroupMembers(group)
	} else {
		results, err = e.repo.Contacts(contacts.DetailBasic)
	}
	if err != nil {
		return nil, err
	}

	results = dedupeByID(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Groups returns every group with member counts.
func (e *Engine) Groups() ([]contacts.Group, error) {
	if err := e.checkAccess(); err != nil {
		return nil, err
	}
	return e.repo.Groups()
}
