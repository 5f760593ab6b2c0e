// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Stage  string            `json:"stage,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// FromFault wraps a pipeline fault with the status code for its kind. Errors
// that are not faults are returned unchanged.
func FromFault(err error) error {
	fe := fault.Get(err)
	if fe == nil {
		return err
	}

	return NewTrusted(err, FaultStatus(fe.Kind))
}

// FaultStatus returns the HTTP status code for a kind of fault.
func FaultStatus(kind fault.Kind) int {
	switch kind {
	case fault.Validation, fault.Encoding, fault.UnsupportedFork:
		return http.StatusBadRequest
	case fault.Signing:
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// Response converts the error into the form sent to the client.
func (te *Trusted) Response() Response {
	resp := Response{
		Error: te.Err.Error(),
	}

	if fe := fault.Get(te.Err); fe != nil {
		resp.Kind = fe.Kind.String()
		resp.Stage = fe.Stage
		if fe.Field != "" {
			resp.Fields = map[string]string{fe.Field: fe.Err.Error()}
		}
	}

	return resp
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
