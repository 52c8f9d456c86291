package models

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// PendingAction is a destructive chat command waiting for /confirm.
type PendingAction struct {
	Entity string
	ID     int64
}
