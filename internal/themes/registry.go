package themes

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// DefaultTheme and DefaultCodeTheme are used when nothing else is selected.
const (
	DefaultTheme     = "default"
	DefaultCodeTheme = "vscode"
)

// ErrThemeNotFound reports an unknown article theme.
var ErrThemeNotFound = errors.New("themes: theme not found")

// ErrCodeThemeNotFound reports an unknown code theme.
var ErrCodeThemeNotFound = errors.New("themes: code theme not found")

// Theme maps CSS selectors to inline declarations.
type Theme struct {
	Name        string
	Description string
	// Container styles the wrapping <section>.
	Container string
	Styles    map[string]string
}

// CodeTheme colours code blocks and inline code.
type CodeTheme struct {
	Name        string
	Background  string
	Foreground  string
	Border      string
	InlineBg    string
	InlineColor string
}

// Registry holds article and code themes by name.
type Registry struct {
	mu    sync.RWMutex
	theme map[string]Theme
	code  map[string]CodeTheme
}

// NewRegistry returns a registry preloaded with the built-in themes.
func NewRegistry() *Registry {
	r := &Registry{
		theme: make(map[string]Theme),
		code:  make(map[string]CodeTheme),
	}
	for _, t := range builtinThemes() {
		r.theme[t.Name] = t
	}
	for _, c := range builtinCodeThemes() {
		r.code[c.Name] = c
	}
	return r
}

// Register adds or replaces a theme.
func (r *Registry) Register(t Theme) error {
	name := normalizeName(t.Name)
	if name == "" {
		return errors.New("themes: theme name is required")
	}
	t.Name = name
	r.mu.Lock()
	r.theme[name] = t
	r.mu.Unlock()
	return nil
}

// RegisterCode adds or replaces a code theme.
func (r *Registry) RegisterCode(c CodeTheme) error {
	name := normalizeName(c.Name)
	if name == "" {
		return errors.New("themes: code theme name is required")
	}
	c.Name = name
	r.mu.Lock()
	r.code[name] = c
	r.mu.Unlock()
	return nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Theme(name)
	return ok
}

func (r *Registry) Theme(name string) (Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.theme[normalizeName(name)]
	return t, ok
}

func (r *Registry) CodeTheme(name string) (CodeTheme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.code[normalizeName(name)]
	return c, ok
}

// Names lists article themes in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.theme))
	for name := range r.theme {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CodeNames lists code themes in alphabetical order.
func (r *Registry) CodeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.code))
	for name := range r.code {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) resolve(theme, code string) (Theme, CodeTheme, error) {
	if strings.TrimSpace(theme) == "" {
		theme = DefaultTheme
	}
	t, ok := r.Theme(theme)
	if !ok {
		return Theme{}, CodeTheme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, theme)
	}
	if strings.TrimSpace(code) == "" {
		code = DefaultCodeTheme
	}
	c, ok := r.CodeTheme(code)
	if !ok {
		return Theme{}, CodeTheme{}, fmt.Errorf("%w: %s", ErrCodeThemeNotFound, code)
	}
	return t, c, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
