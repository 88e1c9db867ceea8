package polar

// checkoutResponse is the subset of GET /v1/checkouts/{id} the client reads
type checkoutResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

// orderResponse is the subset of GET /v1/orders/{id} the client reads
type orderResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CheckoutID string `json:"checkout_id"`
}

// errorResponse is the error body returned by the API. detail is either a
// string or a list of validation errors.
type errorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail"`
}
