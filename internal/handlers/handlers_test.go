package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/kv"
	"github.com/mcansh/snkrs-sub000/internal/profile"
	"github.com/mcansh/snkrs-sub000/internal/session"
	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	users     map[string]*catalog.User // by id
	passwords map[string]string        // lower(email) -> "userID:password"
	sneakers  map[string]*catalog.Sneaker
	pingErr   error
	created   []catalog.SneakerParams
}

func newFakeStore() *fakeStore {
	base := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	return &fakeStore{
		users: map[string]*catalog.User{
			"u1": {ID: "u1", Username: "mcansh", Email: "logan@example.com", Name: "Logan"},
			"u2": {ID: "u2", Username: "admin", Email: "admin@example.com", Name: "Admin", Admin: true},
		},
		passwords: map[string]string{
			"logan@example.com": "u1:hunter2-hunter2",
			"admin@example.com": "u2:admin-password",
		},
		sneakers: map[string]*catalog.Sneaker{
			"s1": {
				ID: "s1", UserID: "u1",
				Brand: catalog.Brand{ID: "b1", Name: "Nike", Slug: "nike"},
				Model: "Air Max 1", PurchaseDate: base,
			},
			"s2": {
				ID: "s2", UserID: "u1",
				Brand: catalog.Brand{ID: "b2", Name: "Adidas", Slug: "adidas"},
				Model: "Superstar", PurchaseDate: base.AddDate(0, 1, 0),
			},
			"s3": {
				ID: "s3", UserID: "u1",
				Brand: catalog.Brand{ID: "b1", Name: "Nike", Slug: "nike"},
				Model: "Dunk Low", PurchaseDate: base.AddDate(0, 2, 0),
			},
		},
	}
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) UserByID(_ context.Context, id string) (*catalog.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, weberr.NotFound("user")
}

func (s *fakeStore) UserByUsername(_ context.Context, username string) (*catalog.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, weberr.NotFound("user")
}

func (s *fakeStore) CollectionByUsername(ctx context.Context, username string, sort catalog.Sort) (*catalog.UserCollection, error) {
	user, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var sneakers []catalog.Sneaker
	for _, id := range []string{"s1", "s2", "s3"} {
		if sn, ok := s.sneakers[id]; ok && sn.UserID == user.ID {
			sneakers = append(sneakers, *sn)
		}
	}
	if sort == catalog.SortDesc {
		for i, j := 0, len(sneakers)-1; i < j; i, j = i+1, j-1 {
			sneakers[i], sneakers[j] = sneakers[j], sneakers[i]
		}
	}
	return &catalog.UserCollection{User: *user, Sneakers: sneakers}, nil
}

func (s *fakeStore) Register(_ context.Context, p catalog.RegisterParams) (string, error) {
	if _, ok := s.passwords[strings.ToLower(p.Email)]; ok {
		return "", weberr.Validation(map[string]string{
			"email": "A user with this email already exists",
		})
	}
	id := "u-new"
	s.users[id] = &catalog.User{ID: id, Username: p.Username, Email: p.Email, Name: p.Name}
	s.passwords[strings.ToLower(p.Email)] = id + ":" + p.Password
	return id, nil
}

func (s *fakeStore) Authenticate(_ context.Context, email, password string) (string, error) {
	entry, ok := s.passwords[strings.ToLower(email)]
	if !ok {
		return "", weberr.InvalidLogin()
	}
	id, pw, _ := strings.Cut(entry, ":")
	if pw != password {
		return "", weberr.InvalidLogin()
	}
	return id, nil
}

func (s *fakeStore) SneakerByID(_ context.Context, id string) (*catalog.Sneaker, error) {
	if sn, ok := s.sneakers[id]; ok {
		out := *sn
		return &out, nil
	}
	return nil, weberr.NotFound("sneaker")
}

func (s *fakeStore) CreateSneaker(_ context.Context, p catalog.SneakerParams) (*catalog.Sneaker, error) {
	s.created = append(s.created, p)
	return &catalog.Sneaker{ID: "s-new", UserID: p.UserID, Model: p.Model}, nil
}

func (s *fakeStore) UpdateSneaker(_ context.Context, id string, p catalog.SneakerParams) (*catalog.Sneaker, error) {
	sn, ok := s.sneakers[id]
	if !ok {
		return nil, weberr.NotFound("sneaker")
	}
	sn.Model = p.Model
	sn.Colorway = p.Colorway
	return sn, nil
}

func (s *fakeStore) SetSneakerImage(_ context.Context, id, imageURL string) error {
	sn, ok := s.sneakers[id]
	if !ok {
		return weberr.NotFound("sneaker")
	}
	sn.ImageURL = imageURL
	return nil
}

func (s *fakeStore) Brands(context.Context) ([]catalog.Brand, error) {
	return []catalog.Brand{
		{ID: "b1", Name: "Nike", Slug: "nike"},
		{ID: "b2", Name: "Adidas", Slug: "adidas"},
	}, nil
}

type testApp struct {
	router   *gin.Engine
	store    *fakeStore
	sessions session.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := newFakeStore()
	cache := kv.NewMemory()
	sessions := session.NewKVManager(kv.NewMemory(), session.CookieOptions{})
	profiles := profile.NewReader(cache, store, zerolog.Nop())

	router := gin.New()
	h := New(store, profiles, sessions, nil, zerolog.Nop(), false)
	h.Register(router)

	return &testApp{router: router, store: store, sessions: sessions}
}

func (a *testApp) do(method, target, cookie string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// sessionCookie turns a response's Set-Cookie into a request Cookie header.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	raw := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, raw, "expected a Set-Cookie header")
	c, err := http.ParseSetCookie(raw)
	require.NoError(t, err)
	return c.Name + "=" + c.Value
}

func (a *testApp) loginAs(t *testing.T, email, password string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/login", "", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, w.Code)
	return sessionCookie(t, w)
}

func TestHealthcheck(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestHealthcheckFailure(t *testing.T) {
	app := newTestApp(t)
	app.store.pingErr = context.DeadlineExceeded

	w := app.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoginSuccess(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/login", "", url.Values{
		"email":    {"logan@example.com"},
		"password": {"hunter2-hunter2"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/mcansh", w.Header().Get("Location"))

	cookie := sessionCookie(t, w)
	sess := app.sessions.GetSession(context.Background(), cookie)
	assert.Equal(t, "u1", sess.UserID())
}

func TestLoginUnknownEmailFlashesMessage(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/login", "", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever-whatever"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookie := sessionCookie(t, w)
	sess := app.sessions.GetSession(context.Background(), cookie)
	assert.Empty(t, sess.UserID(), "no authentication claim on a failed login")

	// first render shows the flashed message
	w = app.do(http.MethodGet, "/login", cookie, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	// the read consumed it
	w = app.do(http.MethodGet, "/login", cookie, nil)
	assert.NotContains(t, w.Body.String(), "Invalid username or password")
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/login", "", url.Values{
		"email":    {"logan@example.com"},
		"password": {"wrong-password"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginHonorsReturnTo(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/login?returnTo=%2Fsneakers%2Fadd", "", url.Values{
		"email":    {"logan@example.com"},
		"password": {"hunter2-hunter2"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sneakers/add", w.Header().Get("Location"))
}

func TestLoginRejectsExternalReturnTo(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/login?returnTo=%2F%2Fevil.example", "", url.Values{
		"email":    {"logan@example.com"},
		"password": {"hunter2-hunter2"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/mcansh", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "logan@example.com", "hunter2-hunter2")

	w := app.do(http.MethodPost, "/logout", cookie, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	sess := app.sessions.GetSession(context.Background(), cookie)
	assert.Empty(t, sess.UserID(), "store record is gone after logout")
}

func TestJoinDuplicateEmail(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/join", "", url.Values{
		"email":    {"logan@example.com"},
		"username": {"logan2"},
		"password": {"hunter2-hunter2"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "A user with this email already exists")
	// submitted values are preserved on re-render
	assert.Contains(t, w.Body.String(), "logan2")
}

func TestJoinSuccessLogsIn(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/join", "", url.Values{
		"email":    {"new@example.com"},
		"username": {"newuser"},
		"password": {"hunter2-hunter2"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/newuser", w.Header().Get("Location"))

	cookie := sessionCookie(t, w)
	sess := app.sessions.GetSession(context.Background(), cookie)
	assert.Equal(t, "u-new", sess.UserID())
}

func TestJoinMissingFields(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/join", "", url.Values{
		"email": {"new@example.com"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username is required")
	assert.Contains(t, w.Body.String(), "Password is required")
}

func TestProfileSortedAndFiltered(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/mcansh?sort=asc&brand=nike", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Air Max 1")
	assert.Contains(t, body, "Dunk Low")
	assert.NotContains(t, body, "Superstar", "adidas is filtered out")

	// ascending: Air Max 1 (June) renders before Dunk Low (August)
	assert.Less(t,
		strings.Index(body, "Air Max 1"),
		strings.Index(body, "Dunk Low"),
	)
}

func TestProfileUnknownUserIs404(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSneakerAddRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/sneakers/add", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?returnTo=%2Fsneakers%2Fadd", w.Header().Get("Location"))
}

func TestSneakerAdd(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "logan@example.com", "hunter2-hunter2")

	w := app.do(http.MethodPost, "/sneakers/add", cookie, url.Values{
		"brand":        {"New Balance"},
		"model":        {"990v5"},
		"price":        {"174.99"},
		"retailPrice":  {"185"},
		"purchaseDate": {"2021-08-01"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/mcansh", w.Header().Get("Location"))

	require.Len(t, app.store.created, 1)
	created := app.store.created[0]
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "New Balance", created.BrandName)
	assert.Equal(t, 17499, created.Price)
	assert.Equal(t, 18500, created.RetailPrice)
}

func TestSneakerAddValidation(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "logan@example.com", "hunter2-hunter2")

	w := app.do(http.MethodPost, "/sneakers/add", cookie, url.Values{
		"model": {"990v5"},
		"price": {"not-a-number"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Brand is required")
	assert.Contains(t, body, "Must be a dollar amount")
	// preserved value
	assert.Contains(t, body, "990v5")
	assert.Empty(t, app.store.created)
}

func TestSneakerEditOwnership(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "admin@example.com", "admin-password")

	// admin may edit anyone's sneaker
	w := app.do(http.MethodGet, "/sneakers/s1/edit", cookie, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// a non-owner without admin is forbidden
	app.store.users["u2"].Admin = false
	w = app.do(http.MethodGet, "/sneakers/s1/edit", cookie, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSneakerEditNotFound(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "logan@example.com", "hunter2-hunter2")

	w := app.do(http.MethodGet, "/sneakers/zzz/edit", cookie, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImpersonateRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "logan@example.com", "hunter2-hunter2")

	w := app.do(http.MethodPost, "/admin/impersonate", cookie, url.Values{
		"username": {"admin"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestImpersonateSwitchesUser(t *testing.T) {
	app := newTestApp(t)
	cookie := app.loginAs(t, "admin@example.com", "admin-password")

	w := app.do(http.MethodPost, "/admin/impersonate", cookie, url.Values{
		"username": {"mcansh"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/mcansh", w.Header().Get("Location"))

	sess := app.sessions.GetSession(context.Background(), cookie)
	assert.Equal(t, "u1", sess.UserID(), "session now claims the target user")
}
