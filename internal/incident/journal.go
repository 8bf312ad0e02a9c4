// Package incident keeps a journal of errors that reached the terminal
// log/re-raise stage of the error pipeline.
package incident

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fortio.org/safecast"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Incident format changes
const schemaVersion uint16 = 1

const fileExt = ".mp"

var fileSeq uint64

// Incident is one unhandled error as seen by the log stage.
type Incident struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	ID        string // assigned by Record when empty
	Time      time.Time
	Info      string // call site, e.g. "render function"
	Message   string // err.Error()
	Component string // formatted originating component, empty in production
	Trace     string // ancestry trace, empty in production
	Depth     uint16 // ancestors above the originating component
	Rethrown  bool   // the error was re-raised instead of printed
}

// DepthOf converts an ancestor count to the stored width.
func DepthOf(n int) (uint16, error) {
	d, err := safecast.Conv[uint16](n)
	if err != nil {
		return 0, fmt.Errorf("incident depth overflow: %w", err)
	}
	return d, nil
}

// Journal stores incidents as msgpack files in a directory.
// Thread-safe for concurrent access.
type Journal struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a journal rooted at dir, creating it if needed.
func Open(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("incident: empty journal directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, "incidents"), 0o755); err != nil {
		return nil, err
	}
	return &Journal{dir: dir}, nil
}

// OpenDefault opens the journal under the user cache directory.
func OpenDefault(app string) (*Journal, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the journal root.
func (j *Journal) Dir() string {
	if j == nil {
		return ""
	}
	return j.dir
}

func (j *Journal) incidentsDir() string {
	return filepath.Join(j.dir, "incidents")
}

// Record serializes and writes one incident.
func (j *Journal) Record(inc Incident) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	inc.Schema = schemaVersion
	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	if inc.Time.IsZero() {
		inc.Time = time.Now()
	}

	dir := j.incidentsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp) //nolint:errcheck
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&inc); err != nil {
		_ = f.Close() //nolint:errcheck
		return fmt.Errorf("incident: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	name := fmt.Sprintf("%020d-%06d%s", inc.Time.UnixNano(), atomic.AddUint64(&fileSeq, 1), fileExt)
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return err
	}
	committed = true
	return nil
}

// List returns every stored incident of the current schema, oldest first.
func (j *Journal) List() ([]Incident, error) {
	if j == nil {
		return nil, nil
	}
	j.mu.RLock()
	defer j.mu.RUnlock()

	entries, err := os.ReadDir(j.incidentsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Incident, 0, len(names))
	for _, name := range names {
		inc, err := readIncident(filepath.Join(j.incidentsDir(), name))
		if err != nil {
			return nil, fmt.Errorf("incident %s: %w", name, err)
		}
		if inc.Schema != schemaVersion {
			continue
		}
		out = append(out, inc)
	}
	return out, nil
}

func readIncident(path string) (inc Incident, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Incident{}, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := msgpack.NewDecoder(f).Decode(&inc); err != nil {
		return Incident{}, err
	}
	return inc, nil
}

// DropAll removes every stored incident.
func (j *Journal) DropAll() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	// rename first so a concurrent reader never sees a half-deleted journal
	old := j.incidentsDir() + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(j.incidentsDir(), old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
