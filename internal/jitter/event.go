package jitter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"jitter-service/internal/retry"
)

// Strategy selects how a delay is drawn.
type Strategy string

const (
	StrategyFull         Strategy = "full"
	StrategyExponential  Strategy = "exponential"
	StrategyDecorrelated Strategy = "decorrelated"
)

// maxRetryCount bounds the attempt fed to the calculator; every policy
// saturates long before it.
const maxRetryCount = 1 << 20

var validate = validator.New()

// Event is the request record. Absent fields take the service defaults.
type Event struct {
	RetryCount    *float64 `json:"RetryCount" validate:"omitempty,gte=0"`
	Interval      *float64 `json:"Interval"`
	Backoff       *float64 `json:"Backoff"`
	Cap           *float64 `json:"Cap"`
	Strategy      Strategy `json:"Strategy" validate:"omitempty,oneof=full exponential decorrelated"`
	PreviousSleep *float64 `json:"PreviousSleep" validate:"omitempty,gte=0"`
}

// DecodeEvent parses a JSON event. An empty body is the empty event.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if len(bytes.TrimSpace(data)) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Event{}, fieldError(typeErr.Field, fmt.Sprintf("%s must be a number", typeErr.Field))
		}
		return Event{}, fmt.Errorf("%w: malformed event: %v", retry.ErrInvalidInput, err)
	}
	return ev, nil
}

// Validate checks field shapes; policy bounds are left to retry.NewPolicy.
func (e Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fieldError(fe.Field(), fmt.Sprintf("%s failed %q check (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return err
	}
	if e.RetryCount != nil {
		n := *e.RetryCount
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return fieldError("RetryCount", fmt.Sprintf("RetryCount must be a whole number, got %v", n))
		}
	}
	return nil
}

// Attempt returns the validated retry count, defaulting to 0.
func (e Event) Attempt() int {
	if e.RetryCount == nil {
		return 0
	}
	if *e.RetryCount > maxRetryCount {
		return maxRetryCount
	}
	return int(*e.RetryCount)
}

// fieldError classifies a bad field: policy parameters are InvalidPolicy,
// everything else is InvalidInput.
func fieldError(field, msg string) error {
	switch field {
	case "Interval", "Backoff", "Cap":
		return fmt.Errorf("%w: %s", retry.ErrInvalidPolicy, msg)
	default:
		return fmt.Errorf("%w: %s", retry.ErrInvalidInput, msg)
	}
}

// ErrorKind names the error class for transport replies and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, retry.ErrInvalidPolicy):
		return "InvalidPolicy"
	case errors.Is(err, retry.ErrInvalidInput):
		return "InvalidInput"
	default:
		return "Internal"
	}
}
