package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when the requested row does
// not exist.
var ErrNotFound = errors.New("record not found")

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
