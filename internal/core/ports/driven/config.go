package driven

// ConfigStore is a flat key/value view over the user's configuration file.
// Keys use dot notation, e.g. "index.backend".
type ConfigStore interface {
	// Get returns the raw value for key.
	Get(key string) (any, bool)

	// GetString returns the value as a string, or "".
	GetString(key string) string

	// Keys returns every key in sorted order.
	Keys() []string

	// Set stores a value and persists it.
	Set(key string, value any) error

	// Unset removes a key and persists the change.
	Unset(key string) error

	// Path returns the backing file path.
	Path() string
}
