package custom_errors

import "fmt"

// LockNotAcquiredError is returned when a caller declared a lease mandatory
// (EnsureAcquiringLock) and somebody else holds it.
type LockNotAcquiredError struct {
	EntityName string
	EntityID   string
	OwnerID    string
}

func (e *LockNotAcquiredError) Error() string {
	return fmt.Sprintf("could not acquire lock on %s/%s for owner %s", e.EntityName, e.EntityID, e.OwnerID)
}
