package interfaces

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Parser instances are reusable across collection entries.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Sanitize   bool     `mapstructure:"sanitize" yaml:"sanitize"`
	HardWraps  bool     `mapstructure:"hard_wraps" yaml:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode" yaml:"safe_mode"`
}
