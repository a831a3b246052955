package predict

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/okian/wellness/internal/domain/features"
	"gopkg.in/yaml.v3"
)

//go:embed models/*.yaml
var bundled embed.FS

// Model names shipped with the service.
const (
	ModelSleep    = "sleep"
	ModelCalories = "calories"
	ModelDiet     = "diet"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithDir loads artifacts from dir before falling back to the bundled ones.
func WithDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.dir = os.DirFS(dir)
		}
	}
}

// WithFS replaces the directory lookup, mostly for tests.
func WithFS(fsys fs.FS) Option {
	return func(l *Loader) {
		if fsys != nil {
			l.dir = fsys
		}
	}
}

// WithoutBundled disables the bundled fallback.
func WithoutBundled() Option {
	return func(l *Loader) {
		l.bundled = nil
	}
}

// WithSchema registers the input layout an artifact must declare.
func WithSchema(s features.Schema) Option {
	return func(l *Loader) {
		l.schemas[s.Name] = s
	}
}

type entry struct {
	once  sync.Once
	model *LinearModel
	err   error
}

// Loader owns the loaded models. Each model is read at most once and shared
// read-only by every caller afterwards.
type Loader struct {
	dir     fs.FS
	bundled fs.FS
	schemas map[string]features.Schema

	mu      sync.Mutex
	entries map[string]*entry
}

// NewLoader creates a loader that knows the calorie, sleep and diet schemas.
func NewLoader(opts ...Option) *Loader {
	sub, _ := fs.Sub(bundled, "models")
	l := &Loader{
		bundled: sub,
		schemas: map[string]features.Schema{
			features.CalorieSchema.Name: features.CalorieSchema,
			features.SleepSchema.Name:   features.SleepSchema,
			features.DietSchema.Name:    features.DietSchema,
		},
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Model returns the named model, loading it on first use. A failed load is
// remembered and returned to every later caller.
func (l *Loader) Model(name string) (*LinearModel, error) {
	l.mu.Lock()
	e, ok := l.entries[name]
	if !ok {
		e = &entry{}
		l.entries[name] = e
	}
	l.mu.Unlock()

	e.once.Do(func() {
		e.model, e.err = l.load(name)
	})
	return e.model, e.err
}

// Predictor returns the named model as a Predictor.
func (l *Loader) Predictor(name string) (Predictor, error) {
	m, err := l.Model(name)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (l *Loader) load(name string) (*LinearModel, error) {
	raw, err := l.read(name + ".yaml")
	if err != nil {
		return nil, err
	}

	var a Artifact
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, name, err)
	}
	if a.Name != name {
		return nil, fmt.Errorf("%w: file %s.yaml declares model %q", ErrInvalidArtifact, name, a.Name)
	}
	if s, ok := l.schemas[a.Schema]; ok && !s.Matches(a.Schema, a.Version, a.Features) {
		return nil, fmt.Errorf("%w: %s v%d %v, want v%d %v",
			features.ErrSchemaMismatch, name, a.Version, a.Features, s.Version, s.Fields)
	}
	return NewLinearModel(a)
}

func (l *Loader) read(file string) ([]byte, error) {
	if l.dir != nil {
		raw, err := fs.ReadFile(l.dir, file)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read model %s: %w", file, err)
		}
	}
	if l.bundled != nil {
		raw, err := fs.ReadFile(l.bundled, file)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read bundled model %s: %w", file, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, file)
}
