// Package contacts defines the read-only contact domain model shared by the
// store adapters, the query engine, and the command surface.
//
// All string fields default to empty, never a null marker, so matcher and
// presentation code never needs nil checks. Records are snapshots of the
// live platform store and are only valid for one command invocation.
package contacts

import (
	"errors"
	"fmt"
	"strings"
)

// AuthStatus describes Contacts permission state for the current process.
type AuthStatus string

const (
	// AuthStatusNotDetermined indicates access has not been requested yet.
	AuthStatusNotDetermined AuthStatus = "not_determined"
	// AuthStatusRestricted indicates policy restrictions prevent access.
	AuthStatusRestricted AuthStatus = "restricted"
	// AuthStatusDenied indicates the user denied access.
	AuthStatusDenied AuthStatus = "denied"
	// AuthStatusAuthorized indicates Contacts access is granted.
	AuthStatusAuthorized AuthStatus = "authorized"
)

// ErrorCode classifies failures from store adapters and the query engine.
type ErrorCode string

const (
	// ErrorCodeAccessDenied indicates Contacts authorization is missing.
	ErrorCodeAccessDenied ErrorCode = "access_denied"
	// ErrorCodeInvalidQuery indicates a search request without any criteria.
	ErrorCodeInvalidQuery ErrorCode = "invalid_query"
	// ErrorCodeNotFound indicates a referenced contact does not exist.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeGroupNotFound indicates a referenced group does not exist.
	ErrorCodeGroupNotFound ErrorCode = "group_not_found"
	// ErrorCodeExportFailed indicates vCard serialization failed.
	ErrorCodeExportFailed ErrorCode = "export_failed"
	// ErrorCodeStore indicates a backing-store call failed.
	ErrorCodeStore ErrorCode = "store"
)

// Error is the typed package error for all contact operations.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("contacts: %s", e.Code)
	}
	return fmt.Sprintf("contacts: %s: %s", e.Code, e.Message)
}

// Errorf builds a typed Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or ErrorCodeStore when err is not
// a typed contacts error.
func CodeOf(err error) ErrorCode {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return ErrorCodeStore
}

// Detail selects how much of a contact a fetch hydrates.
type Detail string

const (
	// DetailBasic fetches scalar name/organization fields plus phones,
	// emails and birthday. Collection fields beyond that stay unset.
	DetailBasic Detail = "basic"
	// DetailFull fetches every field the store exposes, including note,
	// addresses, urls, social profiles and relations.
	DetailFull Detail = "full"
)

// LabeledValue is a labeled string value (phone, email, url, profile,
// relation). Labels are normalized lowercase tags by the time they leave a
// store adapter.
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Address is one labeled postal address entry.
type Address struct {
	Label   string `json:"label"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// Format renders the address on one line for table output.
func (a Address) Format() string {
	parts := make([]string, 0, 3)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	cityStateZip := a.City
	if a.State != "" {
		if cityStateZip != "" {
			cityStateZip += ", " + a.State
		} else {
			cityStateZip = a.State
		}
	}
	if a.Zip != "" {
		if cityStateZip != "" {
			cityStateZip += " " + a.Zip
		} else {
			cityStateZip = a.Zip
		}
	}
	if cityStateZip != "" {
		parts = append(parts, cityStateZip)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Contact is a single person/entity record from the backing store.
//
// ID is the opaque, store-assigned identifier; callers must treat it as a
// capability token for disambiguation and never parse its structure.
type Contact struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	MiddleName     string         `json:"middleName,omitempty"`
	Nickname       string         `json:"nickname,omitempty"`
	Organization   string         `json:"organization,omitempty"`
	Department     string         `json:"department,omitempty"`
	JobTitle       string         `json:"jobTitle,omitempty"`
	Birthday       Birthday       `json:"birthday"`
	Note           string         `json:"note,omitempty"`
	Phones         []LabeledValue `json:"phones,omitempty"`
	Emails         []LabeledValue `json:"emails,omitempty"`
	Addresses      []Address      `json:"addresses,omitempty"`
	URLs           []LabeledValue `json:"urls,omitempty"`
	SocialProfiles []LabeledValue `json:"socialProfiles,omitempty"`
	Relations      []LabeledValue `json:"relations,omitempty"`
}

// Group is a named collection of contacts with a member count computed by
// the store adapter.
type Group struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HasDuplicateNames reports whether any two contacts in the list share a
// display name, in which case output should surface identifiers.
func HasDuplicateNames(list []Contact) bool {
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		if seen[c.Name] {
			return true
		}
		seen[c.Name] = true
	}
	return false
}

const (
	platformLabelPrefix = "_$!<"
	platformLabelSuffix = ">!$_"
)

// NormalizeLabel unwraps the platform's sentinel label encoding, for example
// "_$!<Home>!$_" becomes "home". Store adapters apply it at the boundary so
// the rest of the program only sees plain lowercase tags.
func NormalizeLabel(label string) string {
	if strings.HasPrefix(label, platformLabelPrefix) && strings.HasSuffix(label, platformLabelSuffix) {
		label = strings.TrimPrefix(label, platformLabelPrefix)
		label = strings.TrimSuffix(label, platformLabelSuffix)
	}
	return strings.ToLower(strings.TrimSpace(label))
}
