package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope every endpoint returns, success or failure.
// It mirrors the pipeline's own result shape so handlers can pass
// pipeline outcomes through untouched.
type Response struct {
	Error   bool        `json:"error"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Code    int         `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func Success(data interface{}, message string) Response {
	return Response{
		Error:   false,
		Message: message,
		Data:    data,
	}
}

func GeneralError(err error) Response {
	return Response{
		Error:   true,
		Message: err.Error(),
	}
}

func ErrorWithCode(message string, code int) Response {
	return Response{
		Error:   true,
		Message: message,
		Code:    code,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errorMessages string
	for _, err := range errs {
		errorMessages += err.Field() + ": " + err.Tag() + "; "
	}

	return Response{
		Error:   true,
		Message: errorMessages,
	}
}
