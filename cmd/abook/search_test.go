package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestCriteriaFromFlags(t *testing.T) {
	cmd := newSearchCmd()
	be.Err(t, cmd.Flags().Set("email", "@acme.example"), nil)
	be.Err(t, cmd.Flags().Set("org", "Acme"), nil)
	be.Err(t, cmd.Flags().Set("limit", "5"), nil)

	crit := criteriaFromFlags(cmd, []string{"fisher"})
	be.Equal(t, crit.Name, "fisher")
	be.Equal(t, crit.Email, "@acme.example")
	be.Equal(t, crit.Organization, "Acme")
	be.Equal(t, crit.Limit, 5)
	be.Equal(t, crit.Empty(), false)
}

func TestCriteriaAnySupersedesTerm(t *testing.T) {
	cmd := newSearchCmd()
	be.Err(t, cmd.Flags().Set("any", "fisher"), nil)

	crit := criteriaFromFlags(cmd, []string{"ignored"})
	be.Equal(t, crit.Name, "")
	be.Equal(t, crit.Any, "fisher")
}

func TestCriteriaBareLimitIsEmpty(t *testing.T) {
	cmd := newSearchCmd()
	be.Err(t, cmd.Flags().Set("limit", "10"), nil)

	crit := criteriaFromFlags(cmd, nil)
	be.Equal(t, crit.Empty(), true)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"search", "show", "list", "groups", "export", "status", "version"} {
		be.True(t, names[want])
	}
}

func TestParseSlogLevel(t *testing.T) {
	for _, s := range []string{"", "info", "DEBUG", "warn", "warning", "error"} {
		_, err := parseSlogLevel(s)
		be.Err(t, err, nil)
	}
	_, err := parseSlogLevel("verbose")
	be.Err(t, err)
}
