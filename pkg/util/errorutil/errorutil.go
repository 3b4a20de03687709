package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Machine codes shared across handlers and gates.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeMissingInfo         = "MISSING_INFO"
	CodeMissingBody         = "MISSING_BODY_ERROR"
	CodeBadParam            = "BAD_PARAM"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeNoSecretDefined     = "NO_SECRET_DEFINED"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
)

// DomainError is the single failure shape that crosses a handler boundary.
// Values are never mutated after construction; use WithStatus to derive a copy.
type DomainError struct {
	HTTPStatus int       `json:"http_code"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Detail     any       `json:"detail,omitempty"`
	Err        error     `json:"-"`
}

// InternalDetail is attached to wrapped unclassified failures.
type InternalDetail struct {
	Message string   `json:"message"`
	Stack   []string `json:"stack"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithStatus returns a copy of e carrying a different transport status.
func (e *DomainError) WithStatus(status int) *DomainError {
	clone := *e
	clone.HTTPStatus = status
	return &clone
}

// WithMessage returns a copy of e carrying a different human message.
func (e *DomainError) WithMessage(message string) *DomainError {
	clone := *e
	clone.Message = message
	return &clone
}

// NewDomainError constructs a DomainError stamped with the current time.
func NewDomainError(code, message string, status int, detail any) *DomainError {
	return &DomainError{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Detail:     detail,
	}
}

func NewBadRequest(message, code string) *DomainError {
	if code == "" {
		code = CodeBadRequest
	}
	return NewDomainError(code, message, http.StatusBadRequest, nil)
}

// NewMissingInfo reports a required field absent from the payload of the named entity.
func NewMissingInfo(entity, field string) *DomainError {
	return NewBadRequest(fmt.Sprintf("New %s for new %s is missing", field, entity), CodeMissingInfo)
}

func NewMissingBody() *DomainError {
	return NewDomainError(CodeMissingBody, "Data not found in request body!", http.StatusNotFound, nil)
}

func NewBadParamID() *DomainError {
	return NewDomainError(CodeBadParam, "Param should be integer!", http.StatusBadRequest, nil)
}

func NewUnauthorized(message, code string) *DomainError {
	if code == "" {
		code = CodeUnauthorized
	}
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message, code string) *DomainError {
	return NewDomainError(code, message, http.StatusForbidden, nil)
}

func NewTooManyRequests(message string, retryAfter time.Duration) *DomainError {
	return NewDomainError(CodeTooManyRequests, message, http.StatusTooManyRequests, map[string]any{
		"retry_after_seconds": int(retryAfter.Round(time.Second).Seconds()),
	})
}

// NewConfigurationError marks a broken deployment rather than a bad request.
func NewConfigurationError(code, message string) *DomainError {
	return NewDomainError(code, message, http.StatusInternalServerError, nil)
}

// NewEntityNotFound builds ENTITY_NOT_FOUND; a nil or empty reference omits it from the message.
func NewEntityNotFound(entity string, reference any) *DomainError {
	name := strings.ToUpper(entity)
	message := fmt.Sprintf("%s not found.", name)
	if reference != nil && fmt.Sprint(reference) != "" {
		message = fmt.Sprintf("%s with reference/id [%v] not found.", name, reference)
	}
	return NewDomainError(name+"_NOT_FOUND", message, http.StatusNotFound, nil)
}

// NewInternalError wraps an unclassified failure, capturing the call stack at this point.
func NewInternalError(err error) *DomainError {
	detail := InternalDetail{Stack: captureStack(3)}
	if err != nil {
		detail.Message = err.Error()
	}
	de := NewDomainError(CodeInternalServerError, "Internal Server Error", http.StatusInternalServerError, detail)
	de.Err = err
	return de
}

// ToDomainError normalizes any error into a DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewDomainError(statusCode(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return NewInternalError(err)
}

func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return CodeInternalServerError
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func captureStack(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	seen := make(map[string]struct{}, n)
	stack := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		line := fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line)
		if _, dup := seen[line]; !dup {
			seen[line] = struct{}{}
			stack = append(stack, line)
		}
		if !more {
			break
		}
	}
	if len(stack) == 0 {
		stack = append(stack, "unknown")
	}
	return stack
}
