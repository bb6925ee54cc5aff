package driven

// ConfigStore is the configuration contract. Keys use dot notation
// ("embedding.model") mapping onto config file sections. Zero values
// mean "not configured"; every consumer carries its own default.
type ConfigStore interface {
	// Get resolves a dotted key, reporting whether it is set.
	Get(key string) (any, bool)

	// GetString returns the string at key, or "" when absent or of
	// another type.
	GetString(key string) string

	// GetInt returns the integer at key, or 0 when absent or of
	// another type.
	GetInt(key string) int

	// Set writes the value at key and persists it.
	Set(key string, value any) error

	// Path reports where the configuration lives, for display.
	Path() string
}
