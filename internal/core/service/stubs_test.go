package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

var nopLog = zerolog.Nop()

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// ── persons ──────────────────────────────────────────────────────────────────

type stubPersonRepo struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

func newStubPersonRepo() *stubPersonRepo {
	return &stubPersonRepo{users: make(map[int64]*domain.User)}
}

func (r *stubPersonRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = r.nextID
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubPersonRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubPersonRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubPersonRepo) List(_ context.Context) ([]*domain.User, error) {
	return r.filter(func(*domain.User) bool { return true }), nil
}

func (r *stubPersonRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Role == role }), nil
}

func (r *stubPersonRepo) filter(keep func(*domain.User) bool) []*domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.User{}
	for _, u := range r.users {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubPersonRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubPersonRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ── roles ────────────────────────────────────────────────────────────────────

type stubRoleRepo struct {
	roles   []domain.RoleRecord
	creates int
}

func newStubRoleRepo(seeded ...domain.Role) *stubRoleRepo {
	r := &stubRoleRepo{}
	for _, role := range seeded {
		_, _ = r.Create(context.Background(), role)
	}
	r.creates = 0
	return r
}

func (r *stubRoleRepo) List(context.Context) ([]domain.RoleRecord, error) {
	return append([]domain.RoleRecord(nil), r.roles...), nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id int64) (*domain.RoleRecord, error) {
	for _, rec := range r.roles {
		if rec.ID == id {
			c := rec
			return &c, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByType(_ context.Context, role domain.Role) (*domain.RoleRecord, error) {
	for _, rec := range r.roles {
		if rec.Type == role {
			c := rec
			return &c, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) Create(_ context.Context, role domain.Role) (*domain.RoleRecord, error) {
	rec := domain.RoleRecord{ID: int64(len(r.roles) + 1), Type: role}
	r.roles = append(r.roles, rec)
	r.creates++
	return &rec, nil
}

func (r *stubRoleRepo) Update(_ context.Context, rec domain.RoleRecord) (*domain.RoleRecord, error) {
	for i := range r.roles {
		if r.roles[i].ID == rec.ID {
			r.roles[i] = rec
			return &rec, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

// ── pets ─────────────────────────────────────────────────────────────────────

type stubPetRepo struct {
	mu        sync.Mutex
	pets      map[int64]*domain.Pet
	nextID    int64
	nextImgID int64
	failNext  error
}

func newStubPetRepo() *stubPetRepo {
	return &stubPetRepo{pets: make(map[int64]*domain.Pet)}
}

func clonePet(p *domain.Pet) *domain.Pet {
	c := *p
	c.Images = append([]domain.PetImage(nil), p.Images...)
	return &c
}

func (r *stubPetRepo) Create(_ context.Context, pet *domain.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.nextID++
	pet.ID = r.nextID
	for i := range pet.Images {
		r.nextImgID++
		pet.Images[i].ID = r.nextImgID
		pet.Images[i].PetID = pet.ID
	}
	r.pets[pet.ID] = clonePet(pet)
	return nil
}

func (r *stubPetRepo) FindByID(_ context.Context, id int64) (*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return clonePet(p), nil
}

func (r *stubPetRepo) List(_ context.Context, f ports.PetFilter) ([]*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Pet{}
	for _, p := range r.pets {
		if f.OwnerID != 0 && p.OwnerID != f.OwnerID {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		out = append(out, clonePet(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// WithinTx applies fn to a scratch copy and commits it only when fn succeeds.
func (r *stubPetRepo) WithinTx(ctx context.Context, fn func(tx ports.PetTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	scratch := &stubPetTx{repo: r, pets: make(map[int64]*domain.Pet, len(r.pets))}
	for id, p := range r.pets {
		scratch.pets[id] = clonePet(p)
	}
	if err := fn(scratch); err != nil {
		return err
	}
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.pets = scratch.pets
	return nil
}

type stubPetTx struct {
	repo *stubPetRepo
	pets map[int64]*domain.Pet
}

func (t *stubPetTx) LockByID(_ context.Context, id int64) (*domain.Pet, error) {
	p, ok := t.pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return clonePet(p), nil
}

func (t *stubPetTx) Update(_ context.Context, pet *domain.Pet) error {
	cur, ok := t.pets[pet.ID]
	if !ok {
		return domain.ErrPetNotFound
	}
	c := clonePet(pet)
	c.Images = cur.Images
	t.pets[pet.ID] = c
	return nil
}

func (t *stubPetTx) AddImages(_ context.Context, petID int64, images []domain.PetImage) ([]domain.PetImage, error) {
	p, ok := t.pets[petID]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	out := make([]domain.PetImage, len(images))
	for i, img := range images {
		t.repo.nextImgID++
		img.ID = t.repo.nextImgID
		img.PetID = petID
		out[i] = img
	}
	p.Images = append(p.Images, out...)
	return out, nil
}

func (t *stubPetTx) DeleteImage(_ context.Context, petID, imageID int64) error {
	p, ok := t.pets[petID]
	if !ok {
		return domain.ErrPetNotFound
	}
	for i, img := range p.Images {
		if img.ID == imageID {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return nil
		}
	}
	return domain.ErrImageNotFound
}

func (t *stubPetTx) Delete(_ context.Context, id int64) error {
	if _, ok := t.pets[id]; !ok {
		return domain.ErrPetNotFound
	}
	delete(t.pets, id)
	return nil
}

// ── image store ──────────────────────────────────────────────────────────────

type stubImageStore struct {
	mu         sync.Mutex
	files      map[string][]byte
	seq        int
	saves      int
	failDelete error
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{files: make(map[string][]byte)}
}

func (s *stubImageStore) Save(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.saves++
	key := fmt.Sprintf("%d_%s", s.seq, filename)
	s.files[key] = b
	return key, nil
}

func (s *stubImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.files, key)
	return nil
}

func (s *stubImageStore) URL(key string) string { return "http://img.test/uploads/" + key }

func (s *stubImageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func pngUploads(n int) []ports.ImageUpload {
	out := make([]ports.ImageUpload, n)
	for i := range out {
		out[i] = ports.ImageUpload{
			Filename:    fmt.Sprintf("photo%d.png", i+1),
			ContentType: "image/png",
			Content:     bytes.NewReader([]byte("\x89PNG fake")),
		}
	}
	return out
}

// ── audit ────────────────────────────────────────────────────────────────────

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
	err    error
}

func (a *recordingAudit) Record(_ context.Context, ev domain.SecurityEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return a.err
}

func (a *recordingAudit) types() []domain.SecurityEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.SecurityEventType, len(a.events))
	for i, ev := range a.events {
		out[i] = ev.Type
	}
	return out
}

// ── idempotency ──────────────────────────────────────────────────────────────

type stubKeys struct {
	ids        map[string]int64
	reserveErr error
}

func (k *stubKeys) Reserve(_ context.Context, scope, key string) (int64, bool, error) {
	if k.reserveErr != nil {
		return 0, false, k.reserveErr
	}
	if k.ids == nil {
		k.ids = make(map[string]int64)
	}
	if id, ok := k.ids[scope+":"+key]; ok {
		return id, false, nil
	}
	k.ids[scope+":"+key] = 0
	return 0, true, nil
}

func (k *stubKeys) Complete(_ context.Context, scope, key string, id int64) error {
	k.ids[scope+":"+key] = id
	return nil
}

func (k *stubKeys) Release(_ context.Context, scope, key string) error {
	delete(k.ids, scope+":"+key)
	return nil
}

var errBoom = errors.New("boom")
