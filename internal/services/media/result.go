package media

import "github.com/messicms/media-service/internal/types"

// Result is the pipeline's outcome envelope. It is shaped identically
// for HTTP handlers and internal batch callers.
type Result struct {
	Error   bool                `json:"error"`
	Message string              `json:"message,omitempty"`
	Data    *types.FileResource `json:"data,omitempty"`
	Code    int                 `json:"code,omitempty"`
}

func successResult(data *types.FileResource) *Result {
	return &Result{Error: false, Data: data}
}

func errorResult(message string) *Result {
	return &Result{Error: true, Message: message}
}
