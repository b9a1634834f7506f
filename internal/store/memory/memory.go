// Package memory provides in-memory implementations of the store interfaces
// for tests and local development.
package memory

import "github.com/wolfeidau/taskscope/internal/store"

// NewStores returns a fresh set of in-memory stores.
func NewStores() store.Stores {
	orgs := NewOrganizationStore()
	return store.Stores{
		Organizations: orgs,
		Users:         NewUserStore(orgs),
		Tasks:         NewTaskStore(orgs),
		Audit:         NewAuditStore(),
	}
}
