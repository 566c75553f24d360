package api

import "strings"

// OperationNames are the generated accessor names for one entity. The
// console UI binds operations by these derived names, so the convention
// here must not drift: naive `s` pluralization, lower-camel prefixes, and
// `ById` (not `ByID`) on the single-record getter.
type OperationNames struct {
	ListAll string // getAllLeads
	GetByID string // getLeadById
	Create  string // createLead
	Update  string // updateLead
	Delete  string // deleteLead
}

// Operations derives the accessor names for the descriptor.
func (d Descriptor) Operations() OperationNames {
	single := capitalize(d.Name)
	plural := capitalize(d.Plural())
	return OperationNames{
		ListAll: "getAll" + plural,
		GetByID: "get" + single + "ById",
		Create:  "create" + single,
		Update:  "update" + single,
		Delete:  "delete" + single,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
