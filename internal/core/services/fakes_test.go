package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dloms-api/internal/adapters/persistence/models"
	"dloms-api/internal/adapters/persistence/repositories"
	"dloms-api/internal/core/domain"
)

// fakeParcelRepository is an in-memory ParcelRepository
type fakeParcelRepository struct {
	mu      sync.Mutex
	parcels map[string]*models.Parcel

	// forcedConflicts makes UpdateDocuments report a version conflict
	// (simulating a concurrent writer) this many times before succeeding
	forcedConflicts int
	insertErr       error
	updateErr       error

	// beforeUpdate runs at the start of Update, after the caller has read
	// the parcel — a window for interleaving a concurrent writer
	beforeUpdate func()
}

func newFakeParcelRepository() *fakeParcelRepository {
	return &fakeParcelRepository{parcels: map[string]*models.Parcel{}}
}

func clone(p *models.Parcel) *models.Parcel {
	cp := *p
	return &cp
}

func (r *fakeParcelRepository) Insert(ctx context.Context, parcel *models.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, exists := r.parcels[parcel.ParcelID]; exists {
		return domain.ErrParcelAlreadyExists
	}
	r.parcels[parcel.ParcelID] = clone(parcel)
	return nil
}

func (r *fakeParcelRepository) GetByParcelID(ctx context.Context, parcelID string) (*models.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parcels[parcelID]
	if !ok {
		return nil, domain.ErrParcelNotFound
	}
	return clone(p), nil
}

func (r *fakeParcelRepository) List(ctx context.Context, filter repositories.ParcelFilter) ([]*models.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Parcel
	for _, p := range r.parcels {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			term := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.ParcelID), term) &&
				!strings.Contains(strings.ToLower(p.OwnerName), term) &&
				!strings.Contains(strings.ToLower(p.OwnerIDNumber), term) {
				continue
			}
		}
		out = append(out, clone(p))
	}
	return out, nil
}

func (r *fakeParcelRepository) ListWithinBBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]*models.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Parcel
	for _, p := range r.parcels {
		if p.MinLon >= minLon && p.MaxLon <= maxLon && p.MinLat >= minLat && p.MaxLat <= maxLat {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *fakeParcelRepository) Update(ctx context.Context, parcel *models.Parcel) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	cp := clone(parcel)
	// documents and version are owned by UpdateDocuments; a lifecycle
	// update never writes them back
	if cur, ok := r.parcels[parcel.ParcelID]; ok {
		cp.Documents = cur.Documents
		cp.Version = cur.Version
	}
	r.parcels[parcel.ParcelID] = cp
	return nil
}

func (r *fakeParcelRepository) UpdateDocuments(ctx context.Context, parcelID string, expectedVersion int, refs []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return false, r.updateErr
	}
	p, ok := r.parcels[parcelID]
	if !ok {
		return false, nil
	}
	if r.forcedConflicts > 0 {
		r.forcedConflicts--
		p.Version++ // another writer moved the version
		return false, nil
	}
	if p.Version != expectedVersion {
		return false, nil
	}
	p.SetDocumentRefs(refs)
	p.Version++
	return true, nil
}

func (r *fakeParcelRepository) Delete(ctx context.Context, parcelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parcels[parcelID]; !ok {
		return domain.ErrParcelNotFound
	}
	delete(r.parcels, parcelID)
	return nil
}

func (r *fakeParcelRepository) AllDocumentRefs(ctx context.Context) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make(map[string]struct{})
	for _, p := range r.parcels {
		for _, ref := range p.DocumentRefs() {
			refs[ref] = struct{}{}
		}
	}
	return refs, nil
}

// fakeFileStore is an in-memory FileStore recording every write and delete
type fakeFileStore struct {
	mu      sync.Mutex
	seq     int
	files   map[string][]byte
	writes  []string
	deletes []string

	// failWritesAfter fails every write once this many have succeeded
	// (negative disables); failDeletes makes Delete return an error while
	// still recording the attempt
	failWritesAfter int
	failDeletes     bool
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}, failWritesAfter: -1}
}

func (s *fakeFileStore) Write(ctx context.Context, prefix, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWritesAfter >= 0 && len(s.writes) >= s.failWritesAfter {
		return "", fmt.Errorf("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.seq++
	ref := fmt.Sprintf("%s_%d%s", prefix, s.seq, ext)
	s.files[ref] = data
	s.writes = append(s.writes, ref)
	return ref, nil
}

func (s *fakeFileStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, ref)
	if s.failDeletes {
		return fmt.Errorf("delete refused")
	}
	delete(s.files, ref)
	return nil
}

func (s *fakeFileStore) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// testFile pairs a filename with its content for multipart fixtures. An
// empty contentType is filled in from the extension.
type testFile struct {
	name        string
	content     string
	contentType string
}

// makeFileHeaders builds real multipart.FileHeader values by writing and
// re-parsing a multipart form, the same shape Fiber hands to the handlers
func makeFileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="documents"; filename="%s"`, f.name))
		contentType := f.contentType
		if contentType == "" {
			contentType = contentTypeFor(f.name)
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte(f.content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["documents"]
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// square is a closed 5-point ring covering the given extent
func square(minLon, minLat, maxLon, maxLat float64) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}`,
		minLon, minLat, maxLon, minLat, maxLon, maxLat, minLon, maxLat, minLon, minLat,
	))
}
