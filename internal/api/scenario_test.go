package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
	"github.com/adoptafacil/adoption-api/internal/core/service"
	"github.com/adoptafacil/adoption-api/internal/infrastructure/storage"
)

// memUsers backs registration, login and identity lookup.
type memUsers struct {
	mu     sync.Mutex
	byMail map[string]*domain.User
	nextID int64
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byMail[email]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[u.Email]; ok {
		return nil, domain.ErrUserExists
	}
	m.nextID++
	c := *u
	c.ID = m.nextID
	m.byMail[c.Email] = &c
	out := c
	return &out, nil
}

func (m *memUsers) byID(id int64) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMail {
		if u.ID == id {
			c := *u
			return &c
		}
	}
	return nil
}

type memRoles struct {
	ports.RoleRepository
}

func (memRoles) FindByType(_ context.Context, role domain.Role) (*domain.RoleRecord, error) {
	for i, r := range []domain.Role{domain.RoleAdmin, domain.RoleClient, domain.RolePartner} {
		if r == role {
			return &domain.RoleRecord{ID: int64(i + 1), Type: r}, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

// memPets keeps listings in memory. One mutex serialises transactions.
type memPets struct {
	mu      sync.Mutex
	users   *memUsers
	items   map[int64]*domain.Pet
	nextID  int64
	nextImg int64
}

func (m *memPets) Create(_ context.Context, p *domain.Pet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	for i := range p.Images {
		m.nextImg++
		p.Images[i].ID = m.nextImg
	}
	m.items[p.ID] = clonePet(p)
	return nil
}

func (m *memPets) FindByID(_ context.Context, id int64) (*domain.Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read(id)
}

func (m *memPets) List(_ context.Context, f ports.PetFilter) ([]*domain.Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Pet{}
	for id, p := range m.items {
		if f.OwnerID != 0 && p.OwnerID != f.OwnerID {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		c, _ := m.read(id)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *domain.Pet) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *memPets) WithinTx(ctx context.Context, fn func(tx ports.PetTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(memPetTx{m})
}

func (m *memPets) read(id int64) (*domain.Pet, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	c := clonePet(p)
	c.Owner = m.users.byID(c.OwnerID)
	return c, nil
}

type memPetTx struct{ m *memPets }

func (tx memPetTx) LockByID(_ context.Context, id int64) (*domain.Pet, error) {
	return tx.m.read(id)
}

func (tx memPetTx) Update(_ context.Context, p *domain.Pet) error {
	cur, ok := tx.m.items[p.ID]
	if !ok {
		return domain.ErrPetNotFound
	}
	c := clonePet(p)
	c.Images = cur.Images
	tx.m.items[p.ID] = c
	return nil
}

func (tx memPetTx) AddImages(_ context.Context, petID int64, images []domain.PetImage) ([]domain.PetImage, error) {
	p, ok := tx.m.items[petID]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	out := make([]domain.PetImage, len(images))
	for i, img := range images {
		tx.m.nextImg++
		img.ID = tx.m.nextImg
		out[i] = img
	}
	p.Images = append(p.Images, out...)
	return out, nil
}

func (tx memPetTx) DeleteImage(_ context.Context, petID, imageID int64) error {
	p, ok := tx.m.items[petID]
	if !ok {
		return domain.ErrPetNotFound
	}
	p.Images = slices.DeleteFunc(p.Images, func(i domain.PetImage) bool { return i.ID == imageID })
	return nil
}

func (tx memPetTx) Delete(_ context.Context, id int64) error {
	if _, ok := tx.m.items[id]; !ok {
		return domain.ErrPetNotFound
	}
	delete(tx.m.items, id)
	return nil
}

func clonePet(p *domain.Pet) *domain.Pet {
	c := *p
	c.Images = slices.Clone(p.Images)
	c.Owner = nil
	return &c
}

// newServiceRouter wires the real auth and listing services over in-memory
// repositories and a local image store.
func newServiceRouter(t *testing.T) *echo.Echo {
	t.Helper()
	users := &memUsers{byMail: map[string]*domain.User{}}
	pets := &memPets{users: users, items: map[int64]*domain.Pet{}}

	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "http://api.test")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	tokens := service.NewTokenService("scenario-secret-0123456789abcdef0123", time.Hour)
	log := zerolog.Nop()
	return NewRouter(Services{
		Auth:       service.NewAuthService(users, memRoles{}, service.NewBcryptHasher(4), tokens, nil, log),
		Pets:       service.NewPetService(pets, store, nil, log),
		Tokens:     tokens,
		Identities: users,
	}, Options{UploadDir: dir}, log)
}

func sendJSON(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sendListing(t *testing.T, e *echo.Echo, method, path, auth, listing string, images int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("mascota", listing); err != nil {
		t.Fatalf("write field: %v", err)
	}
	for i := 0; i < images; i++ {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="imagenes"; filename="rex-%d.png"`, i))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write([]byte("\x89PNG fake image"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, auth)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// signUp registers an account, logs in and returns the bearer header.
func signUp(t *testing.T, e *echo.Echo, name, email string, role domain.Role) string {
	t.Helper()
	reg := fmt.Sprintf(`{"name":%q,"lastName":"Prueba","email":%q,"password":"secret123","role":%q}`, name, email, role)
	if rec := sendJSON(e, http.MethodPost, "/api/auth/register", "", reg); rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d %s", email, rec.Code, rec.Body.String())
	}

	rec := sendJSON(e, http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"email":%q,"password":"secret123"}`, email))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %s", email, rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" || body.Type != "Bearer" {
		t.Fatalf("unexpected login body %q: %v", rec.Body.String(), err)
	}
	return "Bearer " + body.Token
}

type listingBody struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"propietarioId"`
	Images  []struct {
		URL   string `json:"url"`
		Order int    `json:"orden"`
	} `json:"imagenes"`
	Owner *struct {
		Email string `json:"email"`
	} `json:"person"`
}

func TestRouter_ListingOwnershipFlow(t *testing.T) {
	e := newServiceRouter(t)
	ana := signUp(t, e, "Ana", "ana@x.com", domain.RolePartner)

	rec := sendListing(t, e, http.MethodPost, "/api/mascotas", ana, `{"nombre":"Rex","especie":"perro","edad":2}`, 2)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var created listingBody
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	rec = do(e, http.MethodGet, fmt.Sprintf("/api/mascotas/%d", created.ID), ana)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var got listingBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Images) != 2 || got.Images[0].Order != 1 || got.Images[1].Order != 2 {
		t.Fatalf("expected two ordered images, got %+v", got.Images)
	}
	for _, img := range got.Images {
		if !strings.HasPrefix(img.URL, "http://api.test/uploads/") {
			t.Fatalf("unexpected image url %q", img.URL)
		}
	}
	if got.Owner == nil || got.Owner.Email != "ana@x.com" {
		t.Fatalf("expected owner ana@x.com, got %+v", got.Owner)
	}

	bob := signUp(t, e, "Bob", "bob@x.com", domain.RolePartner)
	path := fmt.Sprintf("/api/mascotas/%d", created.ID)
	rec = sendListing(t, e, http.MethodPut, path, bob, `{"nombre":"Robado","especie":"perro"}`, 0)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: expected 403, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodDelete, path, bob); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403, got %d", rec.Code)
	}

	rec = sendListing(t, e, http.MethodPut, path, ana, `{"nombre":"Rex II","especie":"perro"}`, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || len(got.Images) != 3 {
		t.Fatalf("expected three images after update, got %s", rec.Body.String())
	}
}

func TestRouter_ListAllRequiresAdmin(t *testing.T) {
	e := newServiceRouter(t)
	ana := signUp(t, e, "Ana", "ana@x.com", domain.RolePartner)
	client := signUp(t, e, "Carla", "carla@x.com", domain.RoleClient)
	admin := signUp(t, e, "Root", "root@x.com", domain.RoleAdmin)

	if rec := sendListing(t, e, http.MethodPost, "/api/mascotas", ana, `{"nombre":"Luna","especie":"gato"}`, 0); rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(e, http.MethodGet, "/api/mascotas/admin/all", client); rec.Code != http.StatusForbidden {
		t.Fatalf("client: expected 403, got %d %s", rec.Code, rec.Body.String())
	}

	rec := do(e, http.MethodGet, "/api/mascotas/admin/all", admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var all []listingBody
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(all) != 1 || all[0].Owner == nil || all[0].Owner.Email != "ana@x.com" {
		t.Fatalf("expected ana's listing with owner details, got %s", rec.Body.String())
	}

	if rec := do(e, http.MethodDelete, fmt.Sprintf("/api/mascotas/%d", all[0].ID), admin); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d %s", rec.Code, rec.Body.String())
	}
}
