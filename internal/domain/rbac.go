package domain

// EnforceRequest is the permission question asked by route middleware.
// Policies are scoped per subsidiary, so the same role can carry different
// grants across legal entities.
type EnforceRequest struct {
	EmployeeID   string
	SubsidiaryID string
	Resource     string
	Action       string
}
