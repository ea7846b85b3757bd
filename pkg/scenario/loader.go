package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/cespare/xxhash/v2"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	cueembed "github.com/chazu/ordinal/cue"
)

const scenarioExt = ".cue"

// Loader compiles scenarios against the embedded schema and caches the results
type Loader struct {
	// mu serializes use of ctx, which is not safe for concurrent use
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value

	cache *Cache

	fsys fs.FS
	dir  string
}

// NewLoader creates a loader serving the scenarios embedded in the binary
func NewLoader() (*Loader, error) {
	return NewLoaderWithFS(cueembed.ScenarioFS, cueembed.ScenarioDir)
}

// NewLoaderWithFS creates a loader serving the *.cue files found in dir of fsys
func NewLoaderWithFS(fsys fs.FS, dir string) (*Loader, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(cueembed.Schema, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("failed to compile scenario schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if !def.Exists() {
		return nil, fmt.Errorf("#Scenario definition not found in schema")
	}

	return &Loader{
		ctx:    ctx,
		schema: def,
		cache:  NewCache(),
		fsys:   fsys,
		dir:    dir,
	}, nil
}

// Names lists the available embedded scenarios, sorted
func (l *Loader) Names() ([]string, error) {
	matches, err := fs.Glob(l.fsys, path.Join(l.dir, "*"+scenarioExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), scenarioExt))
	}
	sort.Strings(names)
	return names, nil
}

// LoadEmbedded loads an embedded scenario by name
func (l *Loader) LoadEmbedded(name string) (*Scenario, error) {
	if name == "" {
		return nil, fmt.Errorf("embedded scenario name is empty")
	}

	content, err := fs.ReadFile(l.fsys, path.Join(l.dir, name+scenarioExt))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded scenario %s: %w", name, err)
	}

	s, err := l.LoadFromContent(fmt.Sprintf("embedded://%s", name), content)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, nil
}

// LoadFile loads a scenario from a CUE or JSON file on disk. A scenario
// without a name takes the file's base name.
func (l *Loader) LoadFile(filename string) (*Scenario, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := l.LoadFromContent(filename, content)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return s, nil
}

// LoadFromContent compiles scenario source, validates it against the schema
// and decodes it. source is used in error messages and recorded on the result.
func (l *Loader) LoadFromContent(source string, content []byte) (*Scenario, error) {
	digest := fmt.Sprintf("%x", xxhash.Sum64(content))
	if cached, found := l.cache.Get(digest); found {
		cached.Source = source
		return cached, nil
	}

	s, err := l.compile(source, content)
	if err != nil {
		return nil, err
	}
	s.Digest = digest
	s.Source = source

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s is invalid: %w", source, err)
	}

	l.cache.Set(digest, s)
	return s, nil
}

func (l *Loader) compile(source string, content []byte) (*Scenario, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := l.ctx.CompileBytes(content, cue.Filename(source))
	if value.Err() != nil {
		return nil, fmt.Errorf("failed to compile scenario %s: %w", source, aggregate(value.Err()))
	}

	unified := l.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("scenario %s does not match schema: %w", source, aggregate(err))
	}

	var s Scenario
	if err := unified.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", source, err)
	}
	return &s, nil
}

// aggregate flattens a CUE error list so every problem is reported
func aggregate(err error) error {
	list := cueerrors.Errors(err)
	if len(list) <= 1 {
		return err
	}
	errs := make([]error, 0, len(list))
	for _, e := range list {
		errs = append(errs, e)
	}
	return utilerrors.NewAggregate(errs)
}
