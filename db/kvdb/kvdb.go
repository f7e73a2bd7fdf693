package kvdb

// DB stores advocate payloads keyed by advocate id.
type DB interface {
	Set(key string, value []byte) error
	SetMany(entries map[string][]byte) error
	Get(key string) ([]byte, error)
	GetMany(keys []string) ([][]byte, error)
	Close() error
}
