package entity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhive/console-client-go/api"
	"github.com/staffhive/console-client-go/internal/fakeapi"
)

const (
	testEmail    = "dev@staffhive.test"
	testPassword = "s3cret"
)

func newTestRegistry(t *testing.T) (*Registry, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New(
		fakeapi.WithUser(testEmail, testPassword),
		fakeapi.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, &api.Credentials{
		BaseURL:  server.URL,
		Email:    testEmail,
		Password: testPassword,
	}, api.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewRegistry(client), fake
}

func TestRegistryOperationCatalog(t *testing.T) {
	registry, _ := newTestRegistry(t)

	operations := registry.Operations()
	assert.Len(t, operations, 5*len(Descriptors))
	assert.IsIncreasing(t, operations)

	for _, name := range []string{
		"getAllLeads", "getLeadById", "createLead", "updateLead", "deleteLead",
		"getAllInvoices", "getInvoiceById",
		// companyDetails never takes an `s`.
		"getAllCompanyDetails", "getCompanyDetailsById", "updateCompanyDetails",
	} {
		assert.Contains(t, operations, name)
	}
	assert.NotContains(t, operations, "getAllCompanyDetailss")
	assert.NotContains(t, operations, "getAllClients", "client has no registry entry of its own")
}

func TestRegistryCallDispatchesByName(t *testing.T) {
	registry, fake := newTestRegistry(t)
	fake.Store().Seed("lead",
		fakeapi.Record{"id": "l1", "name": "Acme"},
		fakeapi.Record{"id": "l2", "name": "Globex"},
	)
	ctx := context.Background()

	result, err := registry.Call(ctx, "getAllLeads", CallRequest{})
	require.NoError(t, err)
	page, ok := result.(*api.ListResult[Lead])
	require.True(t, ok)
	assert.Len(t, page.Items, 2)

	result, err = registry.Call(ctx, "getLeadById", CallRequest{ID: "l2"})
	require.NoError(t, err)
	lead, ok := result.(*Lead)
	require.True(t, ok)
	assert.Equal(t, "Globex", lead.Name)

	_, err = registry.Call(ctx, "approveLead", CallRequest{})
	require.ErrorContains(t, err, "unknown operation")
}

func TestRegistryCallGenericMutations(t *testing.T) {
	registry, fake := newTestRegistry(t)
	ctx := context.Background()

	created, err := registry.Call(ctx, "createInvoice", CallRequest{
		Payload: json.RawMessage(`{"number":"INV-001","amount":1200}`),
	})
	require.NoError(t, err)
	invoice, ok := created.(*Record)
	require.True(t, ok)
	id := invoice.EntityID()
	require.NotEmpty(t, id)

	updated, err := registry.Call(ctx, "updateInvoice", CallRequest{
		ID:      id,
		Payload: json.RawMessage(`{"number":"INV-001","amount":900}`),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 900, (*updated.(*Record))["amount"])

	_, err = registry.Call(ctx, "deleteInvoice", CallRequest{ID: id})
	require.NoError(t, err)
	assert.Empty(t, fake.Store().List("invoice", nil))
}

func TestClientViewFiltersContacts(t *testing.T) {
	registry, fake := newTestRegistry(t)
	fake.Store().Seed("contact",
		fakeapi.Record{"id": "c1", "name": "Dana", "is_client": true},
		fakeapi.Record{"id": "c2", "name": "Sam", "is_client": false},
		fakeapi.Record{"id": "c3", "name": "Riva", "is_client": true},
	)
	ctx := context.Background()

	clients, err := registry.Clients.List(ctx, api.ListQuery{})
	require.NoError(t, err)
	require.Len(t, clients.Items, 2)
	for _, c := range clients.Items {
		assert.True(t, c.IsClient)
	}

	contacts, err := registry.Contacts.List(ctx, api.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, contacts.Items, 3)
}

func TestClientViewCreateForcesFlagAndInvalidatesContactLists(t *testing.T) {
	fake := fakeapi.New(
		fakeapi.WithUser(testEmail, testPassword),
		fakeapi.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	fake.Store().Seed("contact", fakeapi.Record{"id": "c1", "name": "Dana", "is_client": false})

	var contactGets atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/contact" {
			contactGets.Add(1)
		}
		fake.ServeHTTP(w, r)
	}))
	t.Cleanup(proxy.Close)
	client := api.NewClient(proxy.URL, &api.Credentials{
		BaseURL:  proxy.URL,
		Email:    testEmail,
		Password: testPassword,
	}, api.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	registry := NewRegistry(client)
	ctx := context.Background()

	_, err := registry.Contacts.List(ctx, api.ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 1, contactGets.Load())

	created, err := registry.Clients.Create(ctx, Contact{Name: "Riva"})
	require.NoError(t, err)
	assert.True(t, created.IsClient, "client flag forced on")

	// Clients share the contact tag space, so the contact list refetches.
	contacts, err := registry.Contacts.List(ctx, api.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, contactGets.Load())
	assert.Len(t, contacts.Items, 2)
}
