package entity

import (
	"context"

	"github.com/staffhive/console-client-go/api"
)

// ClientView exposes the client book as a filtered view over contacts.
// Clients are contacts with is_client fixed to true; a separate registry
// entry would split the cache-tag space, so every call delegates to the
// contact resource and invalidation ripples to contact lists too.
type ClientView struct {
	contacts *api.Resource[Contact]
}

func NewClientView(contacts *api.Resource[Contact]) *ClientView {
	return &ClientView{contacts: contacts}
}

// List fetches contacts with the is_client filter injected.
func (v *ClientView) List(ctx context.Context, q api.ListQuery) (*api.ListResult[Contact], error) {
	return v.contacts.List(ctx, q.WithFilter("is_client", "true"))
}

// Get fetches a single client by contact id.
func (v *ClientView) Get(ctx context.Context, id string) (*Contact, error) {
	return v.contacts.Get(ctx, id)
}

// Create stores the contact with the client flag forced on.
func (v *ClientView) Create(ctx context.Context, c Contact) (*Contact, error) {
	c.IsClient = true
	return v.contacts.Create(ctx, c)
}

// Update replaces the contact, keeping the client flag forced on.
func (v *ClientView) Update(ctx context.Context, id string, c Contact) (*Contact, error) {
	c.IsClient = true
	return v.contacts.Update(ctx, id, c)
}

// Delete removes the underlying contact.
func (v *ClientView) Delete(ctx context.Context, id string) error {
	return v.contacts.Delete(ctx, id)
}
