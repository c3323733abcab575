package errors

// ErrorResponse is the JSON error envelope of the status API.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is what clients see of an AppError. The cause is never exposed.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse builds the client-facing envelope.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}
