package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/users"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	hashes map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}, hashes: map[string]string{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	m.byID[u.ID] = u
	m.hashes[u.ID] = hash
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.Email == email {
			return u, m.hashes[id], nil
		}
	}
	return nil, "", domain.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) add(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = u
}

// EnsureFirebaseUser links by email only for verified emails, like the SQL repository.
func (m *memUsers) EnsureFirebaseUser(_ context.Context, fu users.FirebaseUser) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email != fu.Email {
			continue
		}
		if !fu.EmailVerified {
			return nil, domain.ErrUnauthorized
		}
		return u, nil
	}
	u := &domain.User{ID: "fb-" + fu.UID, Name: fu.Name, Email: fu.Email}
	m.byID[u.ID] = u
	return u, nil
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, tok string) (*fbauth.Token, error) {
	switch tok {
	case "firebase-ok":
		return &fbauth.Token{UID: "abc", Claims: map[string]interface{}{"email": "fb@example.com", "name": "Fb"}}, nil
	case "firebase-verified":
		return &fbauth.Token{UID: "xyz", Claims: map[string]interface{}{"email": "ada@example.com", "email_verified": true}}, nil
	case "firebase-unverified":
		return &fbauth.Token{UID: "evil", Claims: map[string]interface{}{"email": "ada@example.com", "email_verified": false}}, nil
	}
	return nil, errors.New("bad firebase token")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct-horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	raw, exp, err := tokens.Issue(&domain.User{ID: "u1", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.True(t, claims.Admin)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Parse(raw)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokens("secret", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unsigned token", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Parse(none)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestService_RegisterLoginMe(t *testing.T) {
	store := newMemUsers()
	svc := NewService(store, NewTokens("secret", time.Hour))
	ctx := context.Background()

	sess, err := svc.Register(ctx, validation.Register{Name: "Ada", Email: "Ada@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "ada@example.com", sess.User.Email)

	_, err = svc.Register(ctx, validation.Register{Name: "Ada", Email: "ada@example.com", Password: "correct-horse"})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "email")

	_, err = svc.Register(ctx, validation.Register{Email: "bad", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	logged, err := svc.Login(ctx, validation.Login{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, validation.Login{Email: "ada@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(ctx, validation.Login{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	me, err := svc.Me(ctx, domain.Actor{ID: sess.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
}

func protectedRouter(a *Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(a.Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, actor)
	})
	return r
}

func TestAuthenticatorMiddleware(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	store := newMemUsers()
	store.add(&domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	r := protectedRouter(NewAuthenticator(tokens, fakeVerifier{}, store))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("Bearer nope").Code)
	})

	t.Run("access token", func(t *testing.T) {
		raw, _, err := tokens.Issue(&domain.User{ID: "u1"})
		require.NoError(t, err)

		w := call("Bearer " + raw)
		require.Equal(t, http.StatusOK, w.Code)
		var actor domain.Actor
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
		assert.Equal(t, domain.Actor{ID: "u1"}, actor)
	})

	t.Run("admin flag comes from the stored user", func(t *testing.T) {
		raw, _, err := tokens.Issue(&domain.User{ID: "u1", IsAdmin: true})
		require.NoError(t, err)

		w := call("Bearer " + raw)
		require.Equal(t, http.StatusOK, w.Code)
		var actor domain.Actor
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
		assert.False(t, actor.IsAdmin)
	})

	t.Run("token of a deleted user", func(t *testing.T) {
		raw, _, err := tokens.Issue(&domain.User{ID: "gone"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+raw).Code)
	})

	t.Run("firebase token", func(t *testing.T) {
		w := call("bearer firebase-ok")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "fb-abc")
	})

	t.Run("firebase verified email links the account", func(t *testing.T) {
		w := call("Bearer firebase-verified")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"u1"`)
	})

	t.Run("firebase unverified email cannot take an account", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("Bearer firebase-unverified").Code)
	})
}

func TestHandler(t *testing.T) {
	store := newMemUsers()
	tokens := NewTokens("secret", time.Hour)
	h := NewHandler(NewService(store, tokens))

	r := gin.New()
	h.RegisterPublic(r.Group("/auth"))
	protected := r.Group("/auth")
	protected.Use(NewAuthenticator(tokens, nil, nil).Middleware())
	h.RegisterProtected(protected)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("/auth/register", `{"name":"Ada","email":"ada@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		OK    bool        `json:"ok"`
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)

	w = post("/auth/register", `{"name":"","email":"x","password":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"fields"`)

	w = post("/auth/register", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/auth/login", `{"email":"ada@example.com","password":"wrong-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
}
