package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/models"
	"github.com/pathforge/pathforge_backend/repositories"
	"github.com/pathforge/pathforge_backend/utils"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

// fakeUserStore is an in-memory UserStore with the same uniqueness guarantee
// as the MongoDB unique email index.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return repositories.ErrDuplicateEmail
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	s.users[user.Email] = &stored
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			found := *user
			return &found, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// fakeMailer records sent codes instead of talking to SMTP
type fakeMailer struct {
	mu    sync.Mutex
	sends []sentMail
}

type sentMail struct {
	Email string
	Name  string
	OTP   string
}

func (m *fakeMailer) SendRegistrationOTP(email, name, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, sentMail{Email: email, Name: name, OTP: otp})
	return nil
}

type authTestEnv struct {
	e       *echo.Echo
	ac      *AuthController
	users   *fakeUserStore
	pending *repositories.MemoryPendingStore
	mailer  *fakeMailer
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Setenv("JWT_SECRET", "test-secret")

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	users := newFakeUserStore()
	pending := repositories.NewMemoryPendingStore()
	mailer := &fakeMailer{}

	return &authTestEnv{
		e:       e,
		ac:      NewAuthController(users, pending, mailer, nil),
		users:   users,
		pending: pending,
		mailer:  mailer,
	}
}

func (env *authTestEnv) postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.Response {
	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func registrationBody(email string) string {
	return fmt.Sprintf(`{"fullName":"Test User","email":%q,"password":"secret123","contact":"+1 555 0100"}`, email)
}

func (env *authTestEnv) startRegistration(t *testing.T, email string) *models.PendingRegistration {
	c, rec := env.postJSON("/api/auth/send-registration-otp", registrationBody(email))
	require.NoError(t, env.ac.SendRegistrationOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	reg, err := env.pending.Get(context.Background(), strings.ToLower(strings.TrimSpace(email)))
	require.NoError(t, err)
	return reg
}

func TestSendRegistrationOTP(t *testing.T) {
	env := newAuthTestEnv(t)

	reg := env.startRegistration(t, "alice@example.com")

	assert.Len(t, reg.Code, 6)
	for _, r := range reg.Code {
		assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", reg.Code)
	}
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, "Test User", reg.FullName)
	assert.NotEqual(t, "secret123", reg.PasswordHash, "plaintext password must never be stored")
	assert.NoError(t, utils.CheckPassword("secret123", reg.PasswordHash))
	assert.WithinDuration(t, time.Now().Add(OTPExpiry), reg.ExpiresAt, 5*time.Second)
}

func TestSendRegistrationOTPNormalizesEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	reg := env.startRegistration(t, "  Alice@Example.COM")
	assert.Equal(t, "alice@example.com", reg.Email)
}

func TestSendRegistrationOTPRejectsExistingUser(t *testing.T) {
	env := newAuthTestEnv(t)
	require.NoError(t, env.users.Create(context.Background(), &models.User{Email: "alice@example.com"}))

	c, rec := env.postJSON("/api/auth/send-registration-otp", registrationBody("alice@example.com"))
	require.NoError(t, env.ac.SendRegistrationOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Email already exists", resp.Message)
	_, err := env.pending.Get(context.Background(), "alice@example.com")
	assert.Equal(t, repositories.ErrPendingNotFound, err)
}

func TestSendRegistrationOTPValidation(t *testing.T) {
	env := newAuthTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"fullName":"Test","password":"secret123","contact":"+1 555 0100"}`},
		{"bad email", `{"fullName":"Test","email":"not-an-email","password":"secret123","contact":"+1 555 0100"}`},
		{"short password", `{"fullName":"Test","email":"a@b.com","password":"abc","contact":"+1 555 0100"}`},
		{"missing name", `{"email":"a@b.com","password":"secret123","contact":"+1 555 0100"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := env.postJSON("/api/auth/send-registration-otp", tt.body)
			require.NoError(t, env.ac.SendRegistrationOTP(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, decodeResponse(t, rec).Success)
		})
	}
}

func TestSendRegistrationOTPOverwritesPrevious(t *testing.T) {
	env := newAuthTestEnv(t)

	first := env.startRegistration(t, "alice@example.com")
	second := env.startRegistration(t, "alice@example.com")

	// A single record remains, holding the latest code
	stored, err := env.pending.Get(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, second.Code, stored.Code)

	// The stale code is dead (when the random draw differs)
	if first.Code != second.Code {
		c, rec := env.postJSON("/api/auth/verify-registration-otp",
			fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, first.Code))
		require.NoError(t, env.ac.VerifyRegistrationOTP(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	// The latest code verifies
	c, rec := env.postJSON("/api/auth/verify-registration-otp",
		fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, second.Code))
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVerifyRegistrationOTPSuccess(t *testing.T) {
	env := newAuthTestEnv(t)
	reg := env.startRegistration(t, "alice@example.com")

	c, rec := env.postJSON("/api/auth/verify-registration-otp",
		fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, reg.Code))
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.True(t, resp.User.IsEmailVerified)

	// The durable account exists with the captured fields
	user, err := env.users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	assert.NotNil(t, user.EmailVerifiedAt)
	assert.NoError(t, utils.CheckPassword("secret123", user.Password))

	// Session cookie is attached
	cookies := rec.Result().Cookies()
	var tokenCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == middleware.TokenCookieName {
			tokenCookie = ck
		}
	}
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, "/", tokenCookie.Path)
	assert.Equal(t, resp.Token, tokenCookie.Value)

	// The pending record is consumed
	_, err = env.pending.Get(context.Background(), "alice@example.com")
	assert.Equal(t, repositories.ErrPendingNotFound, err)
}

func TestVerifyRegistrationOTPConsumedOnce(t *testing.T) {
	env := newAuthTestEnv(t)
	reg := env.startRegistration(t, "alice@example.com")

	body := fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, reg.Code)

	c, rec := env.postJSON("/api/auth/verify-registration-otp", body)
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Replaying the same code fails; no second account appears
	c, rec = env.postJSON("/api/auth/verify-registration-otp", body)
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OTP not found or expired", decodeResponse(t, rec).Message)
}

func TestVerifyRegistrationOTPWrongCode(t *testing.T) {
	env := newAuthTestEnv(t)
	reg := env.startRegistration(t, "alice@example.com")

	wrong := "000000"
	if wrong == reg.Code {
		wrong = "000001"
	}

	c, rec := env.postJSON("/api/auth/verify-registration-otp",
		fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, wrong))
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP", decodeResponse(t, rec).Message)

	// A wrong code leaves the record intact; the right code still works
	kept, err := env.pending.Get(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, reg.Code, kept.Code)

	_, err = env.users.FindByEmail(context.Background(), "alice@example.com")
	assert.Equal(t, repositories.ErrUserNotFound, err)
}

func TestVerifyRegistrationOTPExpiredCode(t *testing.T) {
	env := newAuthTestEnv(t)
	reg := env.startRegistration(t, "alice@example.com")

	// Age the record past its validity window
	reg.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, env.pending.Save(context.Background(), reg))

	c, rec := env.postJSON("/api/auth/verify-registration-otp",
		fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, reg.Code))
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP", decodeResponse(t, rec).Message)

	// The record survives so a resend can recover the signup
	_, err := env.pending.Get(context.Background(), "alice@example.com")
	assert.NoError(t, err)
}

func TestVerifyRegistrationOTPNoPending(t *testing.T) {
	env := newAuthTestEnv(t)

	c, rec := env.postJSON("/api/auth/verify-registration-otp",
		`{"email":"nobody@example.com","otp":"123456"}`)
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "OTP not found or expired", decodeResponse(t, rec).Message)
}

func TestVerifyRegistrationOTPConcurrentSingleWinner(t *testing.T) {
	env := newAuthTestEnv(t)
	reg := env.startRegistration(t, "alice@example.com")

	const racers = 16
	var wg sync.WaitGroup
	codes := make([]int, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, rec := env.postJSON("/api/auth/verify-registration-otp",
				fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, reg.Code))
			if err := env.ac.VerifyRegistrationOTP(c); err != nil {
				t.Errorf("handler error: %v", err)
				return
			}
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one verification must win")
}

func TestResendOTP(t *testing.T) {
	env := newAuthTestEnv(t)
	first := env.startRegistration(t, "alice@example.com")

	c, rec := env.postJSON("/api/auth/resend-otp", `{"email":"alice@example.com"}`)
	require.NoError(t, env.ac.ResendOTP(c))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New OTP sent successfully", decodeResponse(t, rec).Message)

	reissued, err := env.pending.Get(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.FullName, reissued.FullName)
	assert.Equal(t, first.PasswordHash, reissued.PasswordHash)
	assert.Equal(t, first.Contact, reissued.Contact)
	assert.True(t, reissued.ExpiresAt.After(first.ExpiresAt) || reissued.ExpiresAt.Equal(first.ExpiresAt))

	// Stale code is dead once reissued (when the random draw differs)
	if first.Code != reissued.Code {
		c, rec = env.postJSON("/api/auth/verify-registration-otp",
			fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, first.Code))
		require.NoError(t, env.ac.VerifyRegistrationOTP(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestResendOTPRecoversExpiredRegistration(t *testing.T) {
	env := newAuthTestEnv(t)
	reg := env.startRegistration(t, "alice@example.com")

	reg.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, env.pending.Save(context.Background(), reg))

	c, rec := env.postJSON("/api/auth/resend-otp", `{"email":"alice@example.com"}`)
	require.NoError(t, env.ac.ResendOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	fresh, err := env.pending.Get(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.False(t, fresh.Expired(time.Now()))

	// The recovered registration verifies end to end
	c, rec = env.postJSON("/api/auth/verify-registration-otp",
		fmt.Sprintf(`{"email":"alice@example.com","otp":%q}`, fresh.Code))
	require.NoError(t, env.ac.VerifyRegistrationOTP(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResendOTPWithoutPending(t *testing.T) {
	env := newAuthTestEnv(t)

	c, rec := env.postJSON("/api/auth/resend-otp", `{"email":"nobody@example.com"}`)
	require.NoError(t, env.ac.ResendOTP(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No OTP request found for this email", decodeResponse(t, rec).Message)
}

func TestLoginSuccess(t *testing.T) {
	env := newAuthTestEnv(t)

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, env.users.Create(context.Background(), &models.User{
		Email:           "alice@example.com",
		Password:        hash,
		FullName:        "Alice",
		IsEmailVerified: true,
	}))

	c, rec := env.postJSON("/api/auth/login", `{"email":"alice@example.com","password":"secret123"}`)
	require.NoError(t, env.ac.Login(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.User.ID)

	claims, err := middleware.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newAuthTestEnv(t)

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, env.users.Create(context.Background(), &models.User{
		Email:    "alice@example.com",
		Password: hash,
	}))

	c, unknownRec := env.postJSON("/api/auth/login", `{"email":"nobody@example.com","password":"secret123"}`)
	require.NoError(t, env.ac.Login(c))

	c, wrongRec := env.postJSON("/api/auth/login", `{"email":"alice@example.com","password":"wrong-pass"}`)
	require.NoError(t, env.ac.Login(c))

	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.JSONEq(t, unknownRec.Body.String(), wrongRec.Body.String(),
		"unknown email and wrong password must look identical")
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newAuthTestEnv(t)

	c, rec := env.postJSON("/api/auth/logout", `{}`)
	require.NoError(t, env.ac.Logout(c))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
