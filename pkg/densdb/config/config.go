package config

import (
	"os"
	"strconv"
	"sync"
)

var (
	txRetry     int
	txRetryOnce sync.Once
)

// GetTxRetry returns DENSITY_TX_RETRY, never less than 3.
func GetTxRetry() int {
	txRetryOnce.Do(func() {
		count, err := strconv.Atoi(os.Getenv("DENSITY_TX_RETRY"))
		if err != nil || count < 3 {
			count = 3
		}
		txRetry = count
	})

	return txRetry
}
