package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockID_Stable(t *testing.T) {
	assert.Equal(t, LockID("lockgate:migrations"), LockID("lockgate:migrations"))
	assert.Equal(t, int64(9119007550069624550), LockID("lockgate:migrations"))
	assert.Equal(t, int64(2023957755765852388), LockID("orders"))
}

func TestLockID_DistinctNames(t *testing.T) {
	assert.NotEqual(t, LockID("orders"), LockID("reports"))
	assert.NotEqual(t, LockID("a"), LockID("b"))
}
