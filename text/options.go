package text

import "github.com/go-text/typesetting/language"

// SourceOption configures FontSource creation.
type SourceOption func(*sourceConfig)

// sourceConfig holds configuration for FontSource.
type sourceConfig struct {
	name string
}

// defaultSourceConfig returns the default source configuration.
func defaultSourceConfig() sourceConfig {
	return sourceConfig{}
}

// WithName overrides the family name read from the font's name table.
func WithName(name string) SourceOption {
	return func(c *sourceConfig) {
		c.name = name
	}
}

// ManagerOption configures a FontManager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	glyphEntries    int
	fallbacks       map[language.Script][]string
	defaultFallback []string
	systemCacheDir  string
	systemFonts     bool
}

// defaultManagerConfig returns the default manager configuration.
func defaultManagerConfig() managerConfig {
	return managerConfig{
		glyphEntries: DefaultGlyphCacheEntries,
		fallbacks:    make(map[language.Script][]string),
	}
}

// WithGlyphCacheEntries bounds the shared glyph metrics cache.
func WithGlyphCacheEntries(n int) ManagerOption {
	return func(c *managerConfig) {
		if n > 0 {
			c.glyphEntries = n
		}
	}
}

// WithFallback sets the fallback chain consulted for runs of script
// after the style's own family.
func WithFallback(script language.Script, families ...string) ManagerOption {
	return func(c *managerConfig) {
		c.fallbacks[script] = append([]string(nil), families...)
	}
}

// WithDefaultFallback sets the chain used for scripts without their own.
func WithDefaultFallback(families ...string) ManagerOption {
	return func(c *managerConfig) {
		c.defaultFallback = append([]string(nil), families...)
	}
}

// WithSystemFonts enables the system font scanner as the last fallback.
// cacheDir holds the scanner's index; empty selects the user cache dir.
func WithSystemFonts(cacheDir string) ManagerOption {
	return func(c *managerConfig) {
		c.systemFonts = true
		c.systemCacheDir = cacheDir
	}
}
