package jxa

import (
	"fmt"
	"strings"
)

// whose-clause intermediate representation. Criteria never reach a script
// through string concatenation: a clause carries a typed field, operator and
// raw value, and quoteJS is the single place where escaping happens.

type clauseOp string

const (
	opContains clauseOp = "contains"
	opEquals   clauseOp = "equals"
)

type clause struct {
	field string
	op    clauseOp
	value string
}

// whose serializes the clause to a JXA whose() argument.
func (c clause) whose() string {
	if c.op == opEquals {
		return fmt.Sprintf("{%s: %s}", c.field, quoteJS(c.value))
	}
	return fmt.Sprintf("{%s: {_contains: %s}}", c.field, quoteJS(c.value))
}

// quoteJS renders s as a single-quoted JavaScript string literal.
func quoteJS(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// collectBasic gathers scalar properties for a whose() result set using
// batch property access, which is dramatically faster than per-person
// calls.
const collectBasic = `
function collectBasic(matches, seen, results) {
    var ids = matches.id();
    var names = matches.name();
    var firstNames = matches.firstName();
    var lastNames = matches.lastName();
    var nicknames = matches.nickname();
    var orgs = matches.organization();
    for (var i = 0; i < ids.length; i++) {
        if (seen[ids[i]]) continue;
        seen[ids[i]] = true;
        results.push({
            id: ids[i],
            name: names[i] || '',
            firstName: firstNames[i] || '',
            lastName: lastNames[i] || '',
            nickname: nicknames[i] || '',
            organization: orgs[i] || ''
        });
    }
}
`

// personDetail hydrates one person object. Collection reads sit in
// try/catch because individual properties (notably note, which needs a
// separate entitlement) may throw; they degrade to empty rather than fail
// the whole fetch.
const personDetail = `
function isoDate(d) {
    if (!d) return '';
    var m = ('0' + (d.getMonth() + 1)).slice(-2);
    var day = ('0' + d.getDate()).slice(-2);
    return d.getFullYear() + '-' + m + '-' + day;
}

function labeledValues(items) {
    var out = [];
    try {
        for (var i = 0; i < items.length; i++) {
            out.push({label: items[i].label() || '', value: items[i].value() || ''});
        }
    } catch (e) {}
    return out;
}

function personDetail(p, full) {
    var rec = {
        id: p.id(),
        name: p.name() || '',
        firstName: p.firstName() || '',
        lastName: p.lastName() || '',
        nickname: '',
        organization: '',
        birthday: '',
        phones: [],
        emails: []
    };
    try { rec.nickname = p.nickname() || ''; } catch (e) {}
    try { rec.organization = p.organization() || ''; } catch (e) {}
    try { rec.birthday = isoDate(p.birthDate()); } catch (e) {}
    try { rec.phones = labeledValues(p.phones()); } catch (e) {}
    try { rec.emails = labeledValues(p.emails()); } catch (e) {}
    if (!full) return rec;

    rec.middleName = '';
    rec.department = '';
    rec.jobTitle = '';
    rec.note = '';
    rec.addresses = [];
    rec.urls = [];
    rec.socialProfiles = [];
    rec.relations = [];
    try { rec.middleName = p.middleName() || ''; } catch (e) {}
    try { rec.department = p.department() || ''; } catch (e) {}
    try { rec.jobTitle = p.jobTitle() || ''; } catch (e) {}
    try { rec.note = p.note() || ''; } catch (e) {}
    try {
        var addrs = p.addresses();
        for (var i = 0; i < addrs.length; i++) {
            var a = addrs[i];
            rec.addresses.push({
                label: a.label() || '',
                street: a.street() || '',
                city: a.city() || '',
                state: a.state() || '',
                zip: a.zip() || '',
                country: a.country() || ''
            });
        }
    } catch (e) {}
    try {
        var urls = p.urls();
        for (var i = 0; i < urls.length; i++) {
            rec.urls.push({label: urls[i].label() || '', value: urls[i].value() || ''});
        }
    } catch (e) {}
    try {
        var profiles = p.socialProfiles();
        for (var i = 0; i < profiles.length; i++) {
            rec.socialProfiles.push({
                label: profiles[i].serviceName() || '',
                value: profiles[i].userName() || profiles[i].url() || ''
            });
        }
    } catch (e) {}
    try {
        var rels = p.relatedNames();
        for (var i = 0; i < rels.length; i++) {
            rec.relations.push({label: rels[i].label() || '', value: rels[i].name() || ''});
        }
    } catch (e) {}
    return rec;
}
`

// authProbeScript touches the Contacts application with the cheapest
// possible apple event. Automation denial surfaces as error -1743.
const authProbeScript = `Application("Contacts").name();`

// searchByNameScript runs the store-native contains predicate over name and
// nickname (JXA whose() has no OR, so two passes merged by id).
func searchByNameScript(nameClause, nickClause clause) string {
	return fmt.Sprintf(`
var app = Application("Contacts");
%s
var seen = {};
var results = [];
collectBasic(app.people.whose(%s), seen, results);
collectBasic(app.people.whose(%s), seen, results);
JSON.stringify(results);
`, collectBasic, nameClause.whose(), nickClause.whose())
}

// listContactsScript enumerates every person at the requested detail.
func listContactsScript(full bool) string {
	fullFlag := "false"
	if full {
		fullFlag = "true"
	}
	return fmt.Sprintf(`
var app = Application("Contacts");
%s
var people = app.people;
var count = people.length;
var results = [];
for (var i = 0; i < count; i++) {
    results.push(personDetail(people[i], %s));
}
JSON.stringify(results);
`, personDetail, fullFlag)
}

// contactByIDScript hydrates one person by exact id, emitting null when the
// id does not exist.
func contactByIDScript(idClause clause) string {
	return fmt.Sprintf(`
var app = Application("Contacts");
%s
var matches = app.people.whose(%s);
if (matches.length === 0) {
    'null';
} else {
    JSON.stringify(personDetail(matches[0], true));
}
`, personDetail, idClause.whose())
}

// groupMembersScript lists the members of one group at basic detail,
// emitting null when the group does not exist so the adapter can
// distinguish a missing group from an empty one.
func groupMembersScript(nameClause clause) string {
	return fmt.Sprintf(`
var app = Application("Contacts");
%s
var groups = app.groups.whose(%s);
if (groups.length === 0) {
    'null';
} else {
    var people = groups[0].people;
    var count = people.length;
    var results = [];
    for (var i = 0; i < count; i++) {
        results.push(personDetail(people[i], false));
    }
    JSON.stringify(results);
}
`, personDetail, nameClause.whose())
}

// listGroupsScript lists all groups with member counts; counting is one
// traversal per group.
const listGroupsScript = `
var app = Application("Contacts");
var groups = app.groups;
var names = groups.name();
var results = [];
for (var i = 0; i < names.length; i++) {
    var count = 0;
    try { count = groups[i].people().length; } catch (e) {}
    results.push({name: names[i], count: count});
}
JSON.stringify(results);
`
