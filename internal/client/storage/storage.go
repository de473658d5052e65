// Package storage is the client's durable key/value store. It holds the
// session (keys KeyToken and KeyUser) so that it survives restarts and is
// shared by every client process using the same database file.
package storage

import "context"

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Change describes one key being set (Present) or removed.
type Change struct {
	Key     string
	Value   string
	Present bool
}

type Storage interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	// Watch reports changes made after it returns, by this or any other
	// writer, until ctx is done; then the channel is closed.
	Watch(ctx context.Context) (<-chan Change, error)
	Close() error
}

// diff returns the changes that turn prev into next, ordered by key.
func diff(prev, next map[string]string) []Change {
	var out []Change
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			out = append(out, Change{Key: k, Value: v, Present: true})
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			out = append(out, Change{Key: k})
		}
	}
	sortChanges(out)
	return out
}
