package bundle

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/jchantrell/modelbundle/internal/external"
	"github.com/jchantrell/modelbundle/internal/status"
)

// Manager keeps loaded bundles by tag so a bundle is extracted once and shared
type Manager struct {
	mu      sync.RWMutex
	bundles map[string]*Resources
	opts    []Option
}

// NewManager creates a manager whose bundles are created with opts
func NewManager(opts ...Option) *Manager {
	return &Manager{
		bundles: make(map[string]*Resources),
		opts:    opts,
	}
}

// Load creates a bundle from descriptor and registers it under tag
func (m *Manager) Load(tag string, descriptor external.Descriptor) (*Resources, error) {
	if m.Has(tag) {
		return nil, m.duplicateTag(tag)
	}

	r, err := Create(tag, descriptor, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("loading bundle %s: %w", tag, err)
	}

	if err := m.Add(r); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Add registers an already created bundle under its tag. The manager takes
// ownership and closes it in Close.
func (m *Manager) Add(r *Resources) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bundles[r.Tag()]; exists {
		return m.duplicateTag(r.Tag())
	}
	m.bundles[r.Tag()] = r

	slog.Debug("Bundle registered", "tag", r.Tag(), "entries", len(r.files))
	return nil
}

func (m *Manager) duplicateTag(tag string) error {
	return status.Errorf(status.InvalidArgument, "a model asset bundle with tag %s already exists", tag)
}

// Has reports whether a bundle is registered under tag
func (m *Manager) Has(tag string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.bundles[tag]
	return ok
}

// Get returns the bundle registered under tag
func (m *Manager) Get(tag string) (*Resources, error) {
	m.mu.RLock()
	r, ok := m.bundles[tag]
	m.mu.RUnlock()

	if !ok {
		return nil, status.Errorf(status.NotFound,
			"no model asset bundle with tag: %s. Loaded bundles are: %s.", tag, strings.Join(m.Tags(), ", "))
	}
	return r, nil
}

// Tags returns the registered tags, sorted
func (m *Manager) Tags() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := make([]string, 0, len(m.bundles))
	for tag := range m.bundles {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// GetFile reads an entry from the bundle registered under tag
func (m *Manager) GetFile(tag, name string) ([]byte, error) {
	r, err := m.Get(tag)
	if err != nil {
		return nil, err
	}
	return r.GetFile(name)
}

// FileExists checks if the bundle under tag has an entry called name
func (m *Manager) FileExists(tag, name string) bool {
	r, err := m.Get(tag)
	if err != nil {
		return false
	}
	_, ok := r.files[name]
	return ok
}

// Close closes every registered bundle
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for tag, r := range m.bundles {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing bundle %s: %w", tag, err))
		}
	}
	m.bundles = make(map[string]*Resources)

	return errors.Join(errs...)
}
