// Package jxa is the scripting-bridge contact repository. It automates the
// Contacts application through osascript-executed JavaScript and decodes
// the JSON each script prints.
package jxa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/spachava753/abook/internal/contacts"
)

const osascriptPath = "/usr/bin/osascript"

// Apple event error for missing automation consent.
const notAuthorizedCode = "-1743"

// Runner executes one JavaScript for Automation script and returns its
// trimmed output. Tests substitute a fake to avoid the real Contacts app.
type Runner interface {
	Run(script string) (string, error)
}

type osascriptRunner struct{}

func (osascriptRunner) Run(script string) (string, error) {
	cmd := exec.Command(osascriptPath, "-l", "JavaScript", "-e", script)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// Store drives the Contacts application. It is read-only and holds no
// state between calls.
type Store struct {
	run Runner
	log *slog.Logger
}

// New returns a Store that shells out to osascript. A nil logger disables
// debug logging.
func New(log *slog.Logger) *Store {
	return NewWithRunner(osascriptRunner{}, log)
}

// NewWithRunner returns a Store using a custom script runner.
func NewWithRunner(run Runner, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{run: run, log: log}
}

// AuthorizationStatus probes the Contacts application with a minimal apple
// event. Consent denial cannot be distinguished from "not yet asked"
// through osascript, so a denied probe reports denied and a successful one
// reports authorized.
func (s *Store) AuthorizationStatus() (contacts.AuthStatus, error) {
	if _, err := s.run.Run(authProbeScript); err != nil {
		if strings.Contains(err.Error(), notAuthorizedCode) {
			return contacts.AuthStatusDenied, nil
		}
		return "", mapRunError(err)
	}
	return contacts.AuthStatusAuthorized, nil
}

// ContactByID returns the full-detail contact with the given id, or nil
// when absent.
func (s *Store) ContactByID(id string) (*contacts.Contact, error) {
	output, err := s.exec(contactByIDScript(clause{field: "id", op: opEquals, value: id}))
	if err != nil {
		return nil, err
	}
	if emptyOutput(output) {
		return nil, nil
	}

	var wire wireContact
	if err := json.Unmarshal([]byte(output), &wire); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "parsing contact failed: %v", err)
	}
	c := wire.contact()
	return &c, nil
}

// ContactsByName runs the native contains predicate over name and nickname
// and returns scalar-only basic matches, name hits before nickname hits.
func (s *Store) ContactsByName(term string) ([]contacts.Contact, error) {
	script := searchByNameScript(
		clause{field: "name", op: opContains, value: term},
		clause{field: "nickname", op: opContains, value: term},
	)
	return s.fetchList(script)
}

// Contacts enumerates every person in the store at the requested detail.
func (s *Store) Contacts(detail contacts.Detail) ([]contacts.Contact, error) {
	return s.fetchList(listContactsScript(detail == contacts.DetailFull))
}

// GroupMembers returns the basic-detail members of the named group, or a
// group_not_found error when no such group exists.
func (s *Store) GroupMembers(name string) ([]contacts.Contact, error) {
	output, err := s.exec(groupMembersScript(clause{field: "name", op: opEquals, value: name}))
	if err != nil {
		return nil, err
	}
	if emptyOutput(output) {
		return nil, contacts.Errorf(contacts.ErrorCodeGroupNotFound, "group %q not found", name)
	}
	return decodeContacts(output)
}

// Groups lists every group with its member count.
func (s *Store) Groups() ([]contacts.Group, error) {
	output, err := s.exec(listGroupsScript)
	if err != nil {
		return nil, err
	}
	if emptyOutput(output) {
		return []contacts.Group{}, nil
	}

	var groups []contacts.Group
	if err := json.Unmarshal([]byte(output), &groups); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "parsing groups failed: %v", err)
	}
	return groups, nil
}

func (s *Store) exec(script string) (string, error) {
	output, err := s.run.Run(script)
	if err != nil {
		return "", mapRunError(err)
	}
	s.log.Debug("jxa script completed", "script_bytes", len(script), "output_bytes", len(output))
	return output, nil
}

func (s *Store) fetchList(script string) ([]contacts.Contact, error) {
	output, err := s.exec(script)
	if err != nil {
		return nil, err
	}
	if emptyOutput(output) {
		return []contacts.Contact{}, nil
	}
	return decodeContacts(output)
}

func emptyOutput(output string) bool {
	return output == "" || output == "null"
}

func mapRunError(err error) error {
	if strings.Contains(err.Error(), notAuthorizedCode) {
		return contacts.Errorf(contacts.ErrorCodeAccessDenied, "not authorized to control Contacts: %v", err)
	}
	return contacts.Errorf(contacts.ErrorCodeStore, "jxa execution failed: %v", err)
}

func decodeContacts(output string) ([]contacts.Contact, error) {
	var wire []wireContact
	if err := json.Unmarshal([]byte(output), &wire); err != nil {
		return nil, contacts.Errorf(contacts.ErrorCodeStore, "parsing contacts failed: %v", err)
	}
	out := make([]contacts.Contact, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.contact())
	}
	return out, nil
}

// wireContact mirrors the JSON shape the scripts emit. Labels arrive in the
// platform's sentinel encoding and birthdays as ISO strings; both are
// normalized here, at the repository boundary.
type wireContact struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	MiddleName     string        `json:"middleName"`
	Nickname       string        `json:"nickname"`
	Organization   string        `json:"organization"`
	Department     string        `json:"department"`
	JobTitle       string        `json:"jobTitle"`
	Birthday       string        `json:"birthday"`
	Note           string        `json:"note"`
	Phones         []wireLabeled `json:"phones"`
	Emails         []wireLabeled `json:"emails"`
	Addresses      []wireAddress `json:"addresses"`
	URLs           []wireLabeled `json:"urls"`
	SocialProfiles []wireLabeled `json:"socialProfiles"`
	Relations      []wireLabeled `json:"relations"`
}

type wireLabeled struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type wireAddress struct {
	Label   string `json:"label"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (w wireContact) contact() contacts.Contact {
	// An unparseable birthday degrades to absent rather than failing the
	// whole fetch.
	birthday, _ := contacts.ParseBirthday(w.Birthday)

	c := contacts.Contact{
		ID:             w.ID,
		Name:           w.Name,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		MiddleName:     w.MiddleName,
		Nickname:       w.Nickname,
		Organization:   w.Organization,
		Department:     w.Department,
		JobTitle:       w.JobTitle,
		Birthday:       birthday,
		Note:           w.Note,
		Phones:         labeledValues(w.Phones),
		Emails:         labeledValues(w.Emails),
		URLs:           labeledValues(w.URLs),
		SocialProfiles: labeledValues(w.SocialProfiles),
		Relations:      labeledValues(w.Relations),
	}
	for _, a := range w.Addresses {
		c.Addresses = append(c.Addresses, contacts.Address{
			Label:   contacts.NormalizeLabel(a.Label),
			Street:  a.Street,
			City:    a.City,
			State:   a.State,
			Zip:     a.Zip,
			Country: a.Country,
		})
	}
	return c
}

func labeledValues(wire []wireLabeled) []contacts.LabeledValue {
	if len(wire) == 0 {
		return nil
	}
	out := make([]contacts.LabeledValue, 0, len(wire))
	for _, w := range wire {
		out = append(out, contacts.LabeledValue{
			Label: contacts.NormalizeLabel(w.Label),
			Value: w.Value,
		})
	}
	return out
}
