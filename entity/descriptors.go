package entity

import "github.com/staffhive/console-client-go/api"

// Descriptors is the fixed list of REST collections the console talks to.
// The registry is built once at startup by looping over this list; adding
// an entity means adding a line here, nothing else.
//
// client is deliberately absent: the client book is a filtered view over
// contact (see ClientView) and must share its cache-tag space.
var Descriptors = []api.Descriptor{
	{Name: "lead"},
	{Name: "contact"},
	{Name: "project"},
	{Name: "task"},
	{Name: "employee"},
	{Name: "department"},
	{Name: "designation"},
	{Name: "holiday"},
	{Name: "leave"},
	{Name: "attendance"},
	{Name: "invoice"},
	{Name: "payment"},
	{Name: "expense"},
	{Name: "estimate"},
	{Name: "proposal"},
	{Name: "contract"},
	{Name: "ticket"},
	{Name: "note"},
	{Name: "meeting"},
	{Name: "event"},
	{Name: "document"},
	{Name: "announcement"},
	{Name: "asset"},
	{Name: "award"},
	{Name: "appreciation"},
	{Name: "training"},
	{Name: "role"},
	{Name: "user"},
	{Name: "notification"},
	{Name: "companyDetails", NoPlural: true},
}
