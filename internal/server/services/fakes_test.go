package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/dbx"
	"github.com/tijori/tijori/internal/server/models"
	"github.com/tijori/tijori/internal/server/repositories/collections"
	"github.com/tijori/tijori/internal/server/repositories/files"
	"github.com/tijori/tijori/internal/server/repositories/users"
	_ "modernc.org/sqlite"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// newTxDB returns a real database so that dbx.WithTx can begin and commit.
// The fake repositories ignore the handle they are bound to.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memStore is an in-memory stand-in for the three tables plus the link
// table. fail injects an error into the named repository method.
type memStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	collections map[string]*models.Collection
	files       map[string]*models.File
	links       map[string]map[string]bool // file -> collections
	fail        map[string]error
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]*models.User{},
		collections: map[string]*models.Collection{},
		files:       map[string]*models.File{},
		links:       map[string]map[string]bool{},
		fail:        map[string]error{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Email: email, UserName: email, CreatedAt: m.tick()}
	m.users[u.ID] = u
	return u
}

type fakeRepoManager struct{ s *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return &fakeUsers{f.s} }
func (f *fakeRepoManager) Collections(dbx.DBTX) collections.Repository { return &fakeCollections{f.s} }
func (f *fakeRepoManager) Files(dbx.DBTX) files.Repository             { return &fakeFiles{f.s} }

// --- users ---

type fakeUsers struct{ s *memStore }

func (r *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["users.Create"]; err != nil {
		return nil, err
	}
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return u, nil
}

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["users.GetByEmail"]; err != nil {
		return nil, err
	}
	for _, x := range r.s.users {
		if x.Email == email {
			return x, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["users.GetByID"]; err != nil {
		return nil, err
	}
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

// --- collections ---

type fakeCollections struct{ s *memStore }

func (r *fakeCollections) Create(ctx context.Context, c *models.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.Create"]; err != nil {
		return err
	}
	for _, x := range r.s.collections {
		if x.OwnerID == c.OwnerID && x.Slug == c.Slug {
			return common.ErrorAlreadyExists
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.s.collections[c.ID] = &cp
	return nil
}

func (r *fakeCollections) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.GetByID"]; err != nil {
		return nil, err
	}
	if c, ok := r.s.collections[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeCollections) GetBySlug(ctx context.Context, ownerID, slug string) (*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.GetBySlug"]; err != nil {
		return nil, err
	}
	for _, c := range r.s.collections {
		if c.OwnerID == ownerID && c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeCollections) ListFiles(ctx context.Context, collectionID string) ([]models.FileRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.ListFiles"]; err != nil {
		return nil, err
	}
	out := []models.FileRef{}
	for fid, cs := range r.s.links {
		if cs[collectionID] {
			out = append(out, models.FileRef{ID: fid, Name: r.s.files[fid].Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCollections) ListByOwner(ctx context.Context, ownerID string, page models.Page) ([]*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.ListByOwner"]; err != nil {
		return nil, err
	}
	var all []*models.Collection
	for _, c := range r.s.collections {
		if c.OwnerID == ownerID {
			cp := *c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if page.Order == models.OrderAsc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, page), nil
}

func (r *fakeCollections) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.CountByOwner"]; err != nil {
		return 0, err
	}
	n := 0
	for _, c := range r.s.collections {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCollections) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.CountOwned"]; err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if c, ok := r.s.collections[id]; ok && c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCollections) Update(ctx context.Context, id, name, slug string) (*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.Update"]; err != nil {
		return nil, err
	}
	c, ok := r.s.collections[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for _, x := range r.s.collections {
		if x.ID != id && x.OwnerID == c.OwnerID && x.Slug == slug {
			return nil, common.ErrorAlreadyExists
		}
	}
	c.Name, c.Slug, c.UpdatedAt = name, slug, r.s.tick()
	cp := *c
	return &cp, nil
}

func (r *fakeCollections) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["collections.Delete"]; err != nil {
		return err
	}
	if _, ok := r.s.collections[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.collections, id)
	for _, cs := range r.s.links {
		delete(cs, id)
	}
	return nil
}

// --- files ---

type fakeFiles struct{ s *memStore }

func (r *fakeFiles) Create(ctx context.Context, f *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.Create"]; err != nil {
		return err
	}
	f.ID = uuid.NewString()
	f.CreatedAt = r.s.tick()
	f.UpdatedAt = f.CreatedAt
	cp := *f
	r.s.files[f.ID] = &cp
	r.s.links[f.ID] = map[string]bool{}
	return nil
}

func (r *fakeFiles) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.GetByID"]; err != nil {
		return nil, err
	}
	if f, ok := r.s.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *fakeFiles) matching(ownerID, collectionID string) []*models.File {
	var out []*models.File
	for _, f := range r.s.files {
		if f.OwnerID != ownerID {
			continue
		}
		if collectionID != "" && !r.s.links[f.ID][collectionID] {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out
}

func (r *fakeFiles) ListByOwner(ctx context.Context, ownerID, collectionID string, page models.Page) ([]*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.ListByOwner"]; err != nil {
		return nil, err
	}
	all := r.matching(ownerID, collectionID)
	sort.Slice(all, func(i, j int) bool {
		if page.Order == models.OrderAsc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, page), nil
}

func (r *fakeFiles) CountByOwner(ctx context.Context, ownerID, collectionID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.CountByOwner"]; err != nil {
		return 0, err
	}
	return len(r.matching(ownerID, collectionID)), nil
}

func (r *fakeFiles) ListCollections(ctx context.Context, fileID string) ([]models.CollectionRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.ListCollections"]; err != nil {
		return nil, err
	}
	out := []models.CollectionRef{}
	for cid := range r.s.links[fileID] {
		out = append(out, models.CollectionRef{ID: cid, Name: r.s.collections[cid].Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFiles) AddToCollections(ctx context.Context, fileID string, collectionIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.AddToCollections"]; err != nil {
		return err
	}
	for _, cid := range collectionIDs {
		r.s.links[fileID][cid] = true
	}
	return nil
}

func (r *fakeFiles) ClearCollections(ctx context.Context, fileID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.ClearCollections"]; err != nil {
		return err
	}
	r.s.links[fileID] = map[string]bool{}
	return nil
}

func (r *fakeFiles) Rename(ctx context.Context, id, name string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.Rename"]; err != nil {
		return nil, err
	}
	f, ok := r.s.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	f.Name, f.UpdatedAt = name, r.s.tick()
	cp := *f
	return &cp, nil
}

func (r *fakeFiles) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["files.Delete"]; err != nil {
		return err
	}
	if _, ok := r.s.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.files, id)
	delete(r.s.links, id)
	return nil
}

func paginate[T any](all []T, page models.Page) []T {
	out := []T{}
	start := page.Offset()
	if start >= len(all) {
		return out
	}
	end := start + page.Qty
	if end > len(all) {
		end = len(all)
	}
	return append(out, all[start:end]...)
}

// --- blobs ---

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
	signErr error
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (b *fakeBlobs) Put(ctx context.Context, ownerID string, r io.Reader, size int64, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return "", b.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	key := "users/" + ownerID + "/" + uuid.NewString()
	b.objects[key] = buf.Bytes()
	return key, nil
}

func (b *fakeBlobs) ViewURL(ctx context.Context, key, name string) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return "https://blobs/" + key + "?inline=" + name, nil
}

func (b *fakeBlobs) DownloadURL(ctx context.Context, key, name string) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return "https://blobs/" + key + "?attachment=" + name, nil
}

func (b *fakeBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.delErr != nil {
		return b.delErr
	}
	b.deleted = append(b.deleted, key)
	delete(b.objects, key)
	return nil
}
