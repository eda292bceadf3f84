package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// ErrNegativeCounter is returned when a correction would push a counter
// below zero.
var ErrNegativeCounter = errors.New("counter would become negative")

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
