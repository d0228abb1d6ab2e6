package errors

import "errors"

// Error codes shared across the pipeline. Stage failures are wrapped with one
// of these so the orchestrator and HTTP layer can branch without matching ad
// hoc message strings.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInsufficientData     = "insufficient_data"
	CodeFeatureMismatch      = "feature_mismatch"
	CodePredictorUnavailable = "predictor_unavailable"
	CodeStoreUnavailable     = "store_unavailable"
	CodeActuatorUnreachable  = "actuator_unreachable"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps callers differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the AppError code, or an empty string for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
