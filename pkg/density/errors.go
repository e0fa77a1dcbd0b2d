package density

import (
	"fmt"

	"github.com/materials-commons/partdensity/pkg/apperr"
)

type RatioOutOfRangeError struct {
	Ratio float64
}

func outOfRange(ratio float64) error {
	return &RatioOutOfRangeError{Ratio: ratio}
}

func (e *RatioOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: compactness ratio %.1f%% exceeds 100%%, check the measurement or composition", apperr.ErrOutOfRange, e.Ratio)
}

func (e *RatioOutOfRangeError) Is(target error) bool {
	return target == apperr.ErrOutOfRange
}
