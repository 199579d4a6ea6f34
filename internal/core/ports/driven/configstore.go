package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
//
// Keys the engine reads:
//
//	data_dir                store location override
//	import.identity_column  column holding the order number
//	import.due_date_column  column holding the business due date
//	matching.skip_past_due  enable the past-due matching short-circuit
//	matching.extensions     candidate file extensions, default [".pdf"]
//	archive.root            archive folder root
//	archive.name_column     column holding the business name
//	watch.folder            inbox folder for watch mode
type ConfigStore interface {
	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
