package domain

// EnforceRequest is the access-control question asked before every
// protected operation: may this subject perform action on resource.
type EnforceRequest struct {
	UserID   string
	Resource string
	Action   string
}
