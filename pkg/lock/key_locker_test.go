package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyLockerSerializesSameKey(t *testing.T) {
	l := NewKeyLocker[string]()

	var (
		wg      sync.WaitGroup
		counter int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock("P-100", func() error {
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}

	wg.Wait()
	require.Equal(t, 50, counter)
}

func TestKeyLockerIndependentKeys(t *testing.T) {
	l := NewKeyLocker[string]()
	l.AcquireLock("a")

	done := make(chan struct{})
	go func() {
		_ = l.WithLock("b", func() error { return nil })
		close(done)
	}()

	<-done
	l.ReleaseLock("a")

	// Releasing an unknown key only logs.
	l.ReleaseLock("never-locked")
}
