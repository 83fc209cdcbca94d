package config

// OutputFormat selects how the chosen branch is reported on stdout.
type OutputFormat string

const (
	OutputText OutputFormat = "text" // diagnostic lines plus "Pull from <branch>"
	OutputName OutputFormat = "name" // branch name only
	OutputRef  OutputFormat = "ref"  // refs/heads/<branch>
	OutputJSON OutputFormat = "json"
)

var outputFormats = newEnum(map[string]OutputFormat{
	"text": OutputText,
	"name": OutputName,
	"ref":  OutputRef,
	"json": OutputJSON,
}, OutputText)

// NormalizeOutputFormat returns the canonical format, defaulting to text.
func NormalizeOutputFormat(raw string) OutputFormat {
	if raw == "" {
		return OutputText
	}
	if v, err := outputFormats.parse(raw); err == nil {
		return v
	}
	// Keep unknown values so Validate can report them.
	return OutputFormat(raw)
}

// ParseOutputFormat validates raw against the supported formats.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	return outputFormats.parse(raw)
}
