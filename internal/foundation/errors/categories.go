package errors

// ErrorCategory classifies an error. The CLI adapter derives the exit code from it.
type ErrorCategory string

const (
	// Bad input from flags, environment or the config file.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Forge responses. NotFound maps to the "unavailable" exit code.
	CategoryAuth     ErrorCategory = "auth"
	CategoryNotFound ErrorCategory = "not_found"
	CategoryForge    ErrorCategory = "forge"
	CategoryNetwork  ErrorCategory = "network"

	CategorySelection ErrorCategory = "selection"
	CategoryInternal  ErrorCategory = "internal"
)

// ErrorSeverity tells whether a run can continue past the error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning" // caller may skip and go on
)

// ErrorContext carries structured details such as url, status or branch.
type ErrorContext map[string]any

// Set stores value under key, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// GetInt returns the value under key when it is an int.
func (c ErrorContext) GetInt(key string) (int, bool) {
	n, ok := c[key].(int)
	return n, ok
}
