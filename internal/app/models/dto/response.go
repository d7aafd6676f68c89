package dto

import "time"

// APIResponse is the envelope of every REST response
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorAPIResponse wraps detail in a failed envelope
func NewErrorAPIResponse(detail *ErrorDetail) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
}

// DeleteResult reports whether a delete removed anything
type DeleteResult struct {
	Deleted bool `json:"deleted" example:"true"`
}

// HealthStatus is returned by the health endpoint
type HealthStatus struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"postgres"`
}
