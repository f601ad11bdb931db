package models

// ErrorResponse is returned by all endpoints on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// OrderRequest is the create-order body. PaymentMethod stays a pointer so a
// missing field and an invalid value fail differently; any other fields in the
// payload are accepted and ignored.
type OrderRequest struct {
	PaymentMethod *string `json:"payment_method"`
}
