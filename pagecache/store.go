package pagecache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/atxml"
	"github.com/npillmayer/areatree/model"
)

// Store is a page store which holds resources until closed.
type Store interface {
	model.PageStore
	// Discard frees the storage of a page without loading it.
	Discard(pv *area.PageViewport)
	// Len returns the number of pages currently stored.
	Len() int
	Close() error
}

var (
	_ Store = (*DiskStore)(nil)
	_ Store = (*MemStore)(nil)
)

// --- Disk ------------------------------------------------------------------

// DiskStore keeps page content in files of a temporary directory, which is
// removed by Close.
type DiskStore struct {
	mx     sync.Mutex
	dir    string
	files  map[*area.PageViewport]string
	closed bool
}

// NewDiskStore creates a store with a fresh directory below dir. If dir is
// empty, the default directory for temporary files is used.
func NewDiskStore(dir string) (*DiskStore, error) {
	tmp, err := os.MkdirTemp(dir, "areatree-pages-")
	if err != nil {
		return nil, err
	}
	tracer().Debugf("page cache in %s", tmp)
	return &DiskStore{dir: tmp, files: make(map[*area.PageViewport]string)}, nil
}

// Dir returns the directory holding the page files.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the content of pv to a file and clears it from pv. If writing
// fails, pv keeps its content.
func (s *DiskStore) Save(pv *area.PageViewport) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.files[pv]; ok {
		return fmt.Errorf("page %s is already cached", pv.Key())
	}
	// page keys need not be valid file names
	name := filepath.Join(s.dir, fmt.Sprintf("page-%d-%s.xml", pv.PageIndex(), uuid.NewString()))
	if err := writePage(name, pv); err != nil {
		os.Remove(name)
		return err
	}
	pv.DetachPage()
	s.files[pv] = name
	tracer().P("page", pv.Key()).Debugf("saved to %s", filepath.Base(name))
	return nil
}

func writePage(name string, pv *area.PageViewport) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = atxml.EncodePage(w, pv); err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Load reads the content of pv back and attaches it. The file is removed
// in any case.
func (s *DiskStore) Load(pv *area.PageViewport) error {
	s.mx.Lock()
	name, ok := s.files[pv]
	delete(s.files, pv)
	s.mx.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotStored, pv.Key())
	}
	defer os.Remove(name)
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := atxml.DecodePage(bufio.NewReader(f), pv); err != nil {
		return err
	}
	tracer().P("page", pv.Key()).Debugf("loaded from %s", filepath.Base(name))
	return nil
}

// Discard removes the file of pv, if any.
func (s *DiskStore) Discard(pv *area.PageViewport) {
	s.mx.Lock()
	name, ok := s.files[pv]
	delete(s.files, pv)
	s.mx.Unlock()
	if ok {
		os.Remove(name)
	}
}

// Len returns the number of pages on disk.
func (s *DiskStore) Len() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return len(s.files)
}

// Close removes the directory of the store with all remaining files.
func (s *DiskStore) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if n := len(s.files); n > 0 {
		tracer().Infof("%d page(s) left in cache", n)
	}
	s.files = nil
	return os.RemoveAll(s.dir)
}

// --- Memory ----------------------------------------------------------------

// MemStore keeps detached page content in memory.
type MemStore struct {
	mx    sync.Mutex
	pages map[*area.PageViewport]*area.Page
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{pages: make(map[*area.PageViewport]*area.Page)}
}

// Save detaches the content of pv.
func (s *MemStore) Save(pv *area.PageViewport) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.pages == nil {
		return ErrClosed
	}
	if pv.IsCleared() {
		return fmt.Errorf("%w: %s", atxml.ErrNoContent, pv.Key())
	}
	s.pages[pv] = pv.DetachPage()
	return nil
}

// Load attaches the content of pv again.
func (s *MemStore) Load(pv *area.PageViewport) error {
	s.mx.Lock()
	p, ok := s.pages[pv]
	delete(s.pages, pv)
	s.mx.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotStored, pv.Key())
	}
	pv.AttachPage(p)
	return nil
}

// Discard drops the content of pv.
func (s *MemStore) Discard(pv *area.PageViewport) {
	s.mx.Lock()
	defer s.mx.Unlock()
	delete(s.pages, pv)
}

// Len returns the number of pages held.
func (s *MemStore) Len() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return len(s.pages)
}

// Close drops all content.
func (s *MemStore) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.pages = nil
	return nil
}
