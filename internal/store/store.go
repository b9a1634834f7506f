package store

// Stores groups the persistence collaborators used by the task API.
type Stores struct {
	Organizations OrganizationStore
	Users         UserStore
	Tasks         TaskStore
	Audit         AuditStore
}
