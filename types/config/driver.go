package config

type StorageDriver int

const (
	Postgres StorageDriver = iota + 1
	Redis
)

// String converts the StorageDriver enum to a human-readable string.
func (d StorageDriver) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case Redis:
		return "redis"
	}
	return "unknown"
}
