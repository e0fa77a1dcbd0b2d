package stor

import (
	"github.com/materials-commons/partdensity/pkg/densdb/config"
	"gorm.io/gorm"
)

// WithTxRetry runs fn in a transaction, retrying the whole transaction when
// it fails. Two writers racing to create the same serial counter are
// resolved this way: the loser retries and finds the winner's row.
func WithTxRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error

	for i := 0; i < config.GetTxRetry(); i++ {
		if err = db.Transaction(fn); err == nil {
			return nil
		}
	}

	return err
}
