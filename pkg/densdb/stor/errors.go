package stor

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps gorm's not-found and duplicate-key errors onto the stor
// sentinels and leaves every other error alone.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// ErrMissingReference matches MissingReferencesError.
var ErrMissingReference = errors.New("missing reference")

// MissingReferencesError lists the elements and alloy a part write pointed at
// that were gone by the time the write ran.
type MissingReferencesError struct {
	ElementIDs []int
	AlloyID    int
}

func (e *MissingReferencesError) Error() string {
	return fmt.Sprintf("%s: elements %v, alloy %d", ErrMissingReference, e.ElementIDs, e.AlloyID)
}

func (e *MissingReferencesError) Is(target error) bool {
	return target == ErrMissingReference
}
