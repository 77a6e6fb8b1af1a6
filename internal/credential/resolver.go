package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingCredential means no secret store had the key and no fallback
// value was entered. Callers must stop before contacting the model.
var ErrMissingCredential = errors.New("missing credential")

// SourceFallback names values that were entered interactively.
const SourceFallback = "entered"

// Source is one secret store.
type Source interface {
	Name() string
	Lookup(name string) (string, bool)
}

// Credential is a resolved secret and where it came from.
type Credential struct {
	Name   string
	Value  string
	Source string
}

// Resolver looks a credential up in secret stores, in order, then falls
// back to a value the user typed in.
type Resolver struct {
	name    string
	sources []Source
}

func NewResolver(name string, sources ...Source) *Resolver {
	return &Resolver{name: name, sources: sources}
}

func (r *Resolver) Name() string {
	return r.name
}

// Required is false when the configured provider needs no credential.
func (r *Resolver) Required() bool {
	return r.name != ""
}

// FromStore returns the first non-blank secret store value.
func (r *Resolver) FromStore() (Credential, bool) {
	if !r.Required() {
		return Credential{}, false
	}
	for _, s := range r.sources {
		if v, ok := s.Lookup(r.name); ok && strings.TrimSpace(v) != "" {
			return Credential{Name: r.name, Value: strings.TrimSpace(v), Source: s.Name()}, true
		}
	}
	return Credential{}, false
}

// Resolve prefers the secret stores and uses fallback only when they are
// empty. A blank result is ErrMissingCredential.
func (r *Resolver) Resolve(fallback string) (Credential, error) {
	if !r.Required() {
		return Credential{}, nil
	}
	if c, ok := r.FromStore(); ok {
		return c, nil
	}
	if v := strings.TrimSpace(fallback); v != "" {
		return Credential{Name: r.name, Value: v, Source: SourceFallback}, nil
	}
	return Credential{}, fmt.Errorf("%w: enter %s to start", ErrMissingCredential, r.name)
}

// EnvSource reads the process environment. Load .env before using it.
type EnvSource struct{}

func (EnvSource) Name() string { return "env" }

func (EnvSource) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// FileSource reads a secrets file (toml, yaml or json, by extension).
// A missing file behaves like an empty store.
type FileSource struct {
	path string
	v    *viper.Viper
}

func NewFileSource(path string) (*FileSource, error) {
	fs := &FileSource{path: path}
	if path == "" {
		return fs, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("stat secrets file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}
	fs.v = v
	return fs, nil
}

func (f *FileSource) Name() string { return "secrets_file" }

func (f *FileSource) Lookup(name string) (string, bool) {
	if f.v == nil || !f.v.IsSet(name) {
		return "", false
	}
	return f.v.GetString(name), true
}

// MapSource is a fixed in-memory store, mostly for tests and the CLI.
type MapSource map[string]string

func (MapSource) Name() string { return "static" }

func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}
