package service

import (
	"errors"
	"fmt"

	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidState indicates an invalid status transition was attempted.
	ErrOrderInvalidState = errors.New("order: invalid status transition")
	// ErrOrderConflict indicates a lost update or a duplicate business key.
	ErrOrderConflict = errors.New("order: conflict")
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, port.ErrOrderNotFound):
		return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
	case errors.Is(err, port.ErrVersionConflict), errors.Is(err, port.ErrDuplicateOrderNumber):
		return fmt.Errorf("%w: %v", ErrOrderConflict, err)
	case errors.Is(err, domain.ErrInvalidOrderStatus):
		return fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}

	return fmt.Errorf("order: repository unavailable: %w", err)
}
