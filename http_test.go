package disco_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	disco "github.com/goliatone/go-disco"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app    *fiber.App
	repo   *MockRepositoryManager
	users  *MockUsers
	auther *disco.Auther
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	repo.On("Users").Return(users).Maybe()

	cfg := testConfig{
		signingKey:      "http-test-key",
		tokenExpiration: 1,
		issuer:          "disco-test",
		contextKey:      "user",
	}

	provider := disco.NewUserProvider(users).WithLogger(testLogger{})
	auther := disco.NewAuthenticator(provider, cfg).WithLogger(testLogger{})

	server := disco.NewHTTPServer(repo, auther, auther.TokenService(), cfg).WithLogger(testLogger{})

	app := fiber.New()
	server.RegisterRoutes(app)

	return &testServer{app: app, repo: repo, users: users, auther: auther}
}

func TestSignupEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ts.users.On("GetByEmailTx", mock.Anything, mock.Anything, "novo@email.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	ts.users.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&disco.User{Email: "novo@email.com", Name: "Novo Usuario"}, nil).Once()

	body := `{"username":"Novo Usuario","email":"novo@email.com","password":"senha123","confirmPassword":"senha123"}`
	req := httptest.NewRequest("POST", "/api/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload disco.SignupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotNil(t, payload.User)
	assert.Equal(t, "novo@email.com", payload.User.Email)
	assert.NotEmpty(t, payload.Token)
}

func TestSignupEndpointDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ts.users.On("GetByEmailTx", mock.Anything, mock.Anything, "teste@email.com").
		Return(&disco.User{Email: "teste@email.com"}, nil).Once()

	body := `{"username":"Outro","email":"teste@email.com","password":"senha123","confirmPassword":"senha123"}`
	req := httptest.NewRequest("POST", "/api/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Já existe um usuário cadastrado com este e-mail.", string(raw))
}

func TestSignupEndpointPasswordMismatch(t *testing.T) {
	ts := newTestServer(t)

	body := `{"username":"Novo","email":"novo@email.com","password":"senha123","confirmPassword":"senha456"}`
	req := httptest.NewRequest("POST", "/api/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "As senhas não conferem.", string(raw))
}

func TestVerifyEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ts.users.On("ConsumeVerificationTokenTx", mock.Anything, mock.Anything, "valid-token").
		Return(&disco.User{IsVerified: true}, nil).Once()

	req := httptest.NewRequest("POST", "/api/auth/verify?token=valid-token", nil)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestVerifyEndpointInvalidToken(t *testing.T) {
	ts := newTestServer(t)

	ts.repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ts.users.On("ConsumeVerificationTokenTx", mock.Anything, mock.Anything, "bogus").
		Return(nil, repository.NewRecordNotFound()).Once()

	req := httptest.NewRequest("POST", "/api/auth/verify?token=bogus", nil)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Token de verificação inválido.", string(raw))
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	hash, err := disco.HashPassword("senha123")
	require.NoError(t, err)

	account := &disco.User{
		ID:           uuid.New(),
		Name:         "Teste User",
		Email:        "teste@email.com",
		Role:         disco.RoleUser,
		PasswordHash: hash,
		IsVerified:   true,
	}

	// once for the credential check, once for the response body
	ts.users.On("GetByEmail", mock.Anything, "teste@email.com").Return(account, nil).Twice()
	ts.users.On("TrackSuccessfulLogin", mock.Anything, account).Return(nil).Once()

	body := `{"email":"teste@email.com","password":"senha123"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload disco.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Token)
	require.NotNil(t, payload.User)
	assert.Equal(t, "teste@email.com", payload.User.Email)

	claims, err := ts.auther.TokenService().Validate(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), claims.UserID())
}

func TestLoginEndpointMissingFields(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{
		`{"email":"teste@email.com"}`,
		`{"password":"senha123"}`,
		`{}`,
	} {
		req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := ts.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	hash, err := disco.HashPassword("senha123")
	require.NoError(t, err)

	account := &disco.User{
		ID:           uuid.New(),
		Email:        "teste@email.com",
		PasswordHash: hash,
	}

	ts.users.On("GetByEmail", mock.Anything, "teste@email.com").Return(account, nil).Once()
	ts.users.On("TrackAttemptedLogin", mock.Anything, account).Return(nil).Once()

	body := `{"email":"teste@email.com","password":"senhaErrada"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginEndpointUnknownEmailIsUniform(t *testing.T) {
	ts := newTestServer(t)

	ts.users.On("GetByEmail", mock.Anything, "ghost@email.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	body := `{"email":"ghost@email.com","password":"senha123"}`
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	// same status as a wrong password, nothing to enumerate
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestForgotPasswordEndpointAlwaysNoContent(t *testing.T) {
	ts := newTestServer(t)

	ts.repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	account := &disco.User{ID: uuid.New(), Email: "teste@email.com"}
	ts.users.On("GetByEmailTx", mock.Anything, mock.Anything, "teste@email.com").Return(account, nil).Once()
	ts.users.On("SetResetTokenTx", mock.Anything, mock.Anything, account.ID, mock.Anything, mock.Anything).Return(nil).Once()
	ts.users.On("GetByEmailTx", mock.Anything, mock.Anything, "ghost@email.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	// a malformed address gets the same response, the handler validation
	// failure stays server side
	for _, email := range []string{"teste@email.com", "ghost@email.com", "not-an-email"} {
		body := `{"email":"` + email + `"}`
		req := httptest.NewRequest("POST", "/api/auth/forgot-password", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := ts.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestResetPasswordEndpointMismatch(t *testing.T) {
	ts := newTestServer(t)

	body := `{"token":"some-token","password":"senha123","confirmPassword":"senha456"}`
	req := httptest.NewRequest("POST", "/api/auth/reset-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "As senhas não conferem.", string(raw))
}

func TestDeactivateAccountEndpoint(t *testing.T) {
	ts := newTestServer(t)

	userID := uuid.New()
	identity := disco.NewIdentity(&disco.User{
		ID:    userID,
		Email: "teste@email.com",
		Name:  "Teste User",
		Role:  disco.RoleUser,
	})

	token, err := ts.auther.TokenService().Generate(identity)
	require.NoError(t, err)

	ts.users.On("Deactivate", mock.Anything, userID).Return(nil).Once()

	req := httptest.NewRequest("DELETE", "/api/users/me/deactivate", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	ts.users.AssertExpectations(t)
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("DELETE", "/api/users/me/deactivate", nil)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminOnlyRouteRejectsRegularRole(t *testing.T) {
	ts := newTestServer(t)

	identity := disco.NewIdentity(&disco.User{
		ID:    uuid.New(),
		Email: "teste@email.com",
		Role:  disco.RoleUser,
	})

	token, err := ts.auther.TokenService().Generate(identity)
	require.NoError(t, err)

	body := `{"name":"Novo","email":"novo@email.com"}`
	req := httptest.NewRequest("POST", "/api/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
