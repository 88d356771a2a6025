package dto

import (
	"time"
	"wastescanner/internal/service/waste"
)

// DetectRequest is the body of POST /api/detect-waste.
type DetectRequest struct {
	Image string `json:"image"`
}

// WasteResult describes the category returned to the caller.
type WasteResult struct {
	Type           string `json:"type"`
	DisposalMethod string `json:"disposalMethod"`
	Recyclability  int    `json:"recyclability"`
	OriginalClass  string `json:"original_class,omitempty"`
}

// DetectResponse carries either a detection (Confidence set) or the
// nothing-found sentinel (Message set).
type DetectResponse struct {
	Result     WasteResult `json:"result"`
	Confidence *float64    `json:"confidence,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScanEvent is pushed to live-feed viewers after each successful scan.
type ScanEvent struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Type           string    `json:"type"`
	DisposalMethod string    `json:"disposalMethod"`
	Recyclability  int       `json:"recyclability"`
	OriginalClass  string    `json:"original_class,omitempty"`
	Confidence     *float64  `json:"confidence,omitempty"`
}

// NewDetectResponse converts a classification result into the response body.
func NewDetectResponse(result waste.Result) DetectResponse {
	resp := DetectResponse{
		Result: WasteResult{
			Type:           result.Category.Type,
			DisposalMethod: result.Category.DisposalMethod,
			Recyclability:  result.Category.Recyclability,
		},
	}

	if !result.Found {
		resp.Message = result.Message
		return resp
	}

	confidence := result.Confidence
	resp.Result.OriginalClass = result.OriginalClass
	resp.Confidence = &confidence
	return resp
}
