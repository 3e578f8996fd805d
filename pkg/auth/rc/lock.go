package rc

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

const (
	maxLockRetries = 50
	lockRetryDelay = 10 * time.Millisecond
)

// withFileLock runs fn while holding an exclusive advisory lock on lockPath.
// The lock lives next to the rc file so atomic renames never drop it.
func withFileLock(lockPath string, fn func() error) error {
	lock := flock.New(lockPath)

	var locked bool
	var err error
	for i := 0; i < maxLockRetries; i++ {
		locked, err = lock.TryLock()
		if err != nil {
			return errors.Join(errUtils.ErrLockRcFile, err)
		}
		if locked {
			break
		}
		time.Sleep(lockRetryDelay)
	}

	if !locked {
		return fmt.Errorf("%w: %s is locked by another process", errUtils.ErrLockRcFile, lockPath)
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Trace("Failed to unlock rc file", "error", err, "path", lockPath)
		}
	}()

	return fn()
}
