// Package bundle loads model asset bundles and serves their entries by name.
package bundle

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/jchantrell/modelbundle/internal/archive"
	"github.com/jchantrell/modelbundle/internal/external"
	"github.com/jchantrell/modelbundle/internal/resource"
	"github.com/jchantrell/modelbundle/internal/status"
)

// Resources holds every entry of one model asset bundle. It is read-only once
// created and safe for concurrent reads. Slices returned by GetFile are
// borrowed: they must not be modified and are invalid after Close.
type Resources struct {
	tag        string
	descriptor external.Descriptor
	handler    *external.Handler
	files      map[string][]byte
}

type options struct {
	locator   resource.Locator
	extractor archive.Extractor
}

// Option configures Create
type Option func(*options)

// WithLocator sets the locator used for relative bundle paths
func WithLocator(locator resource.Locator) Option {
	return func(o *options) {
		o.locator = locator
	}
}

// WithExtractor sets the archive extractor
func WithExtractor(extractor archive.Extractor) Option {
	return func(o *options) {
		o.extractor = extractor
	}
}

// Create resolves descriptor and extracts every entry of the bundle. It either
// returns a fully populated Resources or an error and nil.
func Create(tag string, descriptor external.Descriptor, opts ...Option) (*Resources, error) {
	if descriptor == nil {
		return nil, status.Errorf(status.InvalidArgument, "the model asset bundle file descriptor cannot be nil")
	}
	if err := external.Validate(descriptor); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.locator == nil {
		o.locator = resource.DefaultSearchPath()
	}
	if o.extractor == nil {
		o.extractor = archive.Default()
	}

	r := &Resources{
		tag:        tag,
		descriptor: descriptor,
	}
	if err := r.extractFiles(o); err != nil {
		return nil, err
	}

	slog.Debug("Model asset bundle loaded", "tag", tag, "source", r.descriptor.String(), "entries", len(r.files))

	return r, nil
}

func (r *Resources) extractFiles(o *options) error {
	// A relative bundle path is searched in the resource directories and
	// replaced by the absolute path it was found at
	resolved, err := external.ResolvePath(r.descriptor, o.locator)
	if err != nil {
		return err
	}
	r.descriptor = resolved

	handler, err := external.Open(r.descriptor, o.locator)
	if err != nil {
		return err
	}

	files, err := o.extractor.Extract(handler.Content())
	if err != nil {
		return errors.Join(err, handler.Close())
	}

	r.handler = handler
	r.files = files
	return nil
}

// Tag returns the label the bundle was created with
func (r *Resources) Tag() string {
	return r.tag
}

// Descriptor returns the bundle's source, with a relative path replaced by
// the absolute path it resolved to
func (r *Resources) Descriptor() external.Descriptor {
	return r.descriptor
}

// GetFile returns the contents of the entry with exactly this name
func (r *Resources) GetFile(name string) ([]byte, error) {
	content, ok := r.files[name]
	if !ok {
		return nil, status.Errorf(status.NotFound,
			"No model file with name: %s. All model files in the model asset bundle are: %s.",
			name, strings.Join(r.ListFiles(), ", "))
	}
	return content, nil
}

// ListFiles returns the names of all entries, sorted
func (r *Resources) ListFiles() []string {
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenBundle creates Resources for a bundle nested inside this one. The child
// borrows the entry's bytes and must be closed before its parent.
func (r *Resources) OpenBundle(tag, name string, opts ...Option) (*Resources, error) {
	content, err := r.GetFile(name)
	if err != nil {
		return nil, err
	}
	return Create(tag, external.FileContent{Data: content}, opts...)
}

// Close releases the bundle's backing storage
func (r *Resources) Close() error {
	if r.handler == nil {
		return nil
	}
	err := r.handler.Close()
	r.handler = nil
	r.files = nil
	return err
}
