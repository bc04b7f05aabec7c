package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrCalculationNotFound = errors.New("calculation not found")

// Calculation is the audit record of one computed delay.
type Calculation struct {
	ID            uuid.UUID `json:"id"`
	Strategy      string    `json:"strategy"`
	RetryCount    int       `json:"retry_count"`
	Base          float64   `json:"base"`
	Multiplier    float64   `json:"multiplier"`
	Cap           float64   `json:"cap"`
	PreviousSleep *float64  `json:"previous_sleep,omitempty"`
	Range         []float64 `json:"range"` // [lower, upper] the delay was drawn from
	Delay         float64   `json:"delay"`
	Rounded       int       `json:"rounded"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists audit records; it never feeds back into a calculation.
type Store interface {
	SaveCalculation(ctx context.Context, c Calculation) error
	GetCalculation(ctx context.Context, id uuid.UUID) (Calculation, error)
	Close() error
}

// NoOpStore drops records and never finds any.
type NoOpStore struct{}

func (NoOpStore) SaveCalculation(context.Context, Calculation) error { return nil }

func (NoOpStore) GetCalculation(context.Context, uuid.UUID) (Calculation, error) {
	return Calculation{}, ErrCalculationNotFound
}

func (NoOpStore) Close() error { return nil }
