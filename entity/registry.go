package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/staffhive/console-client-go/api"
	"github.com/staffhive/console-client-go/workhours"
)

// Registry holds one operation handle per entity, built once at startup.
// Frequently used entities get typed resources; everything else is reachable
// through Generic or by derived operation name through Call.
type Registry struct {
	Leads          *api.Resource[Lead]
	Contacts       *api.Resource[Contact]
	Clients        *ClientView
	Projects       *api.Resource[Project]
	Tasks          *api.Resource[Task]
	Employees      *api.Resource[Employee]
	Holidays       *api.Resource[workhours.Holiday]
	Leaves         *api.Resource[workhours.Leave]
	CompanyDetails *api.Resource[workhours.OfficeSettings]

	generic map[string]*api.Resource[Record]
	ops     map[string]boundOp
}

type opKind int

const (
	opListAll opKind = iota
	opGetByID
	opCreate
	opUpdate
	opDelete
)

type boundOp struct {
	kind opKind
	ops  api.Ops
}

// CallRequest carries the arguments for a name-dispatched operation. Query
// applies to list operations, ID to get/update/delete, Payload to mutations.
type CallRequest struct {
	Query   api.ListQuery
	ID      string
	Payload json.RawMessage
}

// NewRegistry wires every descriptor to a resource on the given client.
func NewRegistry(c *api.Client) *Registry {
	r := &Registry{
		generic: make(map[string]*api.Resource[Record]),
		ops:     make(map[string]boundOp),
	}

	for _, d := range Descriptors {
		var ops api.Ops
		switch d.Name {
		case "lead":
			r.Leads = api.NewResource[Lead](c, d)
			ops = r.Leads.Ops()
		case "contact":
			r.Contacts = api.NewResource[Contact](c, d)
			ops = r.Contacts.Ops()
		case "project":
			r.Projects = api.NewResource[Project](c, d)
			ops = r.Projects.Ops()
		case "task":
			r.Tasks = api.NewResource[Task](c, d)
			ops = r.Tasks.Ops()
		case "employee":
			r.Employees = api.NewResource[Employee](c, d)
			ops = r.Employees.Ops()
		case "holiday":
			r.Holidays = api.NewResource[workhours.Holiday](c, d)
			ops = r.Holidays.Ops()
		case "leave":
			r.Leaves = api.NewResource[workhours.Leave](c, d)
			ops = r.Leaves.Ops()
		case "companyDetails":
			r.CompanyDetails = api.NewResource[workhours.OfficeSettings](c, d)
			ops = r.CompanyDetails.Ops()
		default:
			res := api.NewResource[Record](c, d)
			r.generic[d.Name] = res
			ops = res.Ops()
		}
		r.bind(ops)
	}

	r.Clients = NewClientView(r.Contacts)
	return r
}

func (r *Registry) bind(ops api.Ops) {
	names := ops.Names()
	r.ops[names.ListAll] = boundOp{kind: opListAll, ops: ops}
	r.ops[names.GetByID] = boundOp{kind: opGetByID, ops: ops}
	r.ops[names.Create] = boundOp{kind: opCreate, ops: ops}
	r.ops[names.Update] = boundOp{kind: opUpdate, ops: ops}
	r.ops[names.Delete] = boundOp{kind: opDelete, ops: ops}
}

// Generic returns the schemaless resource for an entity name, nil when the
// entity is typed or unknown.
func (r *Registry) Generic(name string) *api.Resource[Record] {
	return r.generic[name]
}

// Call dispatches an operation by its derived accessor name.
func (r *Registry) Call(ctx context.Context, operation string, req CallRequest) (any, error) {
	bound, ok := r.ops[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", operation)
	}
	switch bound.kind {
	case opListAll:
		return bound.ops.ListAll(ctx, req.Query)
	case opGetByID:
		return bound.ops.GetByID(ctx, req.ID)
	case opCreate:
		return bound.ops.Create(ctx, req.Payload)
	case opUpdate:
		return bound.ops.Update(ctx, req.ID, req.Payload)
	case opDelete:
		return nil, bound.ops.Delete(ctx, req.ID)
	default:
		return nil, fmt.Errorf("unknown operation kind for %q", operation)
	}
}

// Operations lists every dispatchable operation name, sorted.
func (r *Registry) Operations() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
