package lock

import "crypto/sha256"

// LockID maps a lock name to a stable signed 64-bit advisory lock id.
//
// The same name always hashes to the same id across processes and restarts.
// Two distinct names may still collide on the 64-bit output; callers share
// one id space per database cluster, so treat collisions as a known
// limitation rather than a correctness guarantee.
func LockID(name string) int64 {
	sum := sha256.Sum256([]byte(name))

	var id int64
	for i := 0; i < 8; i++ {
		id = id<<8 | int64(sum[i])
	}
	return id
}
