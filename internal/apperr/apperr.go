// Package apperr builds service-layer errors as gRPC statuses and maps them
// to HTTP responses at the edge.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Validation returns an InvalidArgument status carrying one field violation
// per entry of fields.
func Validation(message string, fields map[string]string) error {
	st := status.New(codes.InvalidArgument, message)
	if len(fields) == 0 {
		return st.Err()
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	br := &errdetails.BadRequest{}
	for _, k := range keys {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       k,
			Description: fields[k],
		})
	}

	detailed, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func Field(field, message string) error {
	return Validation("The given data was invalid.", map[string]string{field: message})
}

func NotFound(format string, args ...any) error {
	return status.Errorf(codes.NotFound, format, args...)
}

// Rule reports a business-rule violation detected before any write.
func Rule(format string, args ...any) error {
	return status.Errorf(codes.FailedPrecondition, format, args...)
}

func Conflict(format string, args ...any) error {
	return status.Errorf(codes.AlreadyExists, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return status.Errorf(codes.Unauthenticated, format, args...)
}

func Forbidden(format string, args ...any) error {
	return status.Errorf(codes.PermissionDenied, format, args...)
}

// Internal wraps an unexpected failure. Errors that already carry a status
// are returned unchanged.
func Internal(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := asStatus(err); ok {
		return err
	}
	return status.Errorf(codes.Internal, "%s: %v", message, err)
}

// Code returns the status code of err, codes.Unknown for plain errors.
func Code(err error) codes.Code {
	if st, ok := asStatus(err); ok {
		return st.Code()
	}
	if err == nil {
		return codes.OK
	}
	return codes.Unknown
}

func Is(err error, code codes.Code) bool {
	return Code(err) == code
}

// HTTPStatus maps err to the HTTP status code returned to API callers.
func HTTPStatus(err error) int {
	switch Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusUnprocessableEntity
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	if st, ok := asStatus(err); ok {
		return st.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Fields returns the field violations attached to a validation error.
func Fields(err error) map[string]string {
	st, ok := asStatus(err)
	if !ok {
		return nil
	}
	var out map[string]string
	for _, d := range st.Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range br.GetFieldViolations() {
			if out == nil {
				out = make(map[string]string)
			}
			out[v.GetField()] = v.GetDescription()
		}
	}
	return out
}

func asStatus(err error) (*status.Status, bool) {
	if err == nil {
		return nil, false
	}
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus(), true
	}
	return nil, false
}

// Wrapf annotates err while keeping its status code visible to HTTPStatus.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
