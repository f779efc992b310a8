package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Saurabhrajput1234/BookMySeat/internal/auth"
	"github.com/Saurabhrajput1234/BookMySeat/internal/config"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
	"github.com/Saurabhrajput1234/BookMySeat/internal/users"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStore) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// fakeCodeCache mimics the Redis TTL cache's consume-once behavior.
type fakeCodeCache struct {
	codes map[string]string
}

func newFakeCodeCache() *fakeCodeCache {
	return &fakeCodeCache{codes: make(map[string]string)}
}

func (f *fakeCodeCache) StoreCode(ctx context.Context, email, code string) error {
	f.codes[email] = code
	return nil
}

func (f *fakeCodeCache) ConsumeCode(ctx context.Context, email, code string) (bool, error) {
	stored, ok := f.codes[email]
	if !ok {
		return false, nil
	}
	delete(f.codes, email)
	return stored == code, nil
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) SendVerificationCode(to, code string) error {
	f.sent = append(f.sent, to+":"+code)
	return nil
}

func newService(store users.Store, cache users.CodeCache, mailer users.CodeMailer) *users.Service {
	issuer := auth.NewTokenIssuer(config.JWTConfig{
		Secret: "test-secret", Issuer: "bookmyseat", Audience: "bookmyseat-frontend", ExpiresIn: time.Hour,
	})
	return users.NewService(store, issuer, cache, mailer, func() string { return "123456" }, logger.NewLogger())
}

func TestRegister_HashesPasswordAndEmailsCode(t *testing.T) {
	store := new(MockStore)
	store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleUser &&
			u.IsActive &&
			!u.EmailVerified &&
			u.PasswordHash != "" &&
			u.PasswordHash != "hunter2-long"
	})).Return(nil)

	cache := newFakeCodeCache()
	mailer := &fakeMailer{}
	svc := newService(store, cache, mailer)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "hunter2-long",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "123456", cache.codes["ada@example.com"])
	assert.Equal(t, []string{"ada@example.com:123456"}, mailer.sent)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := new(MockStore)
	store.On("CreateUser", mock.Anything, mock.Anything).Return(users.ErrEmailTaken)
	svc := newService(store, newFakeCodeCache(), &fakeMailer{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "hunter2-long",
	})
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestVerifyEmail_ConsumesCodeOnce(t *testing.T) {
	user := &models.User{ID: 1, Email: "ada@example.com"}
	store := new(MockStore)
	store.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	store.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.EmailVerified
	})).Return(nil)

	cache := newFakeCodeCache()
	require.NoError(t, cache.StoreCode(context.Background(), "ada@example.com", "123456"))
	svc := newService(store, cache, &fakeMailer{})

	req := models.VerifyEmailRequest{Email: "ada@example.com", Code: "123456"}
	require.NoError(t, svc.VerifyEmail(context.Background(), req))

	// The same code cannot be redeemed twice.
	err := svc.VerifyEmail(context.Background(), req)
	assert.ErrorIs(t, err, users.ErrInvalidCode)
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	store := new(MockStore)
	cache := newFakeCodeCache()
	require.NoError(t, cache.StoreCode(context.Background(), "ada@example.com", "123456"))
	svc := newService(store, cache, &fakeMailer{})

	err := svc.VerifyEmail(context.Background(), models.VerifyEmailRequest{Email: "ada@example.com", Code: "999999"})
	assert.ErrorIs(t, err, users.ErrInvalidCode)
	store.AssertNotCalled(t, "UpdateUser")
}

func registeredUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID: 1, Name: "Ada", Email: "ada@example.com", PasswordHash: hash,
		Role: models.RoleUser, IsActive: true, EmailVerified: true,
	}
}

func TestLogin_Success(t *testing.T) {
	store := new(MockStore)
	store.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(registeredUser(t, "hunter2-long"), nil)
	svc := newService(store, newFakeCodeCache(), &fakeMailer{})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "hunter2-long"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Equal(t, "Ada", resp.Name)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	store := new(MockStore)
	store.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(registeredUser(t, "hunter2-long"), nil)
	store.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, users.ErrUserNotFound)
	svc := newService(store, newFakeCodeCache(), &fakeMailer{})

	_, err1 := svc.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	_, err2 := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})

	assert.ErrorIs(t, err1, users.ErrInvalidCredentials)
	assert.ErrorIs(t, err2, users.ErrInvalidCredentials)
}

func TestLogin_DisabledAndUnverifiedRejected(t *testing.T) {
	disabled := registeredUser(t, "hunter2-long")
	disabled.IsActive = false

	unverified := registeredUser(t, "hunter2-long")
	unverified.Email = "new@example.com"
	unverified.EmailVerified = false

	store := new(MockStore)
	store.On("GetUserByEmail", mock.Anything, "ada@example.com").Return(disabled, nil)
	store.On("GetUserByEmail", mock.Anything, "new@example.com").Return(unverified, nil)
	svc := newService(store, newFakeCodeCache(), &fakeMailer{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "hunter2-long"})
	assert.ErrorIs(t, err, users.ErrAccountDisabled)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "new@example.com", Password: "hunter2-long"})
	assert.ErrorIs(t, err, users.ErrEmailNotVerified)
}

func TestSetRole_RejectsUnknownRole(t *testing.T) {
	store := new(MockStore)
	svc := newService(store, newFakeCodeCache(), &fakeMailer{})

	_, err := svc.SetRole(context.Background(), 1, "SuperAdmin")
	assert.Error(t, err)
	store.AssertNotCalled(t, "UpdateUser")
}

func TestSetRole_ValidRole(t *testing.T) {
	user := &models.User{ID: 1, Role: models.RoleUser}
	store := new(MockStore)
	store.On("GetUserByID", mock.Anything, int64(1)).Return(user, nil)
	store.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin
	})).Return(nil)

	svc := newService(store, newFakeCodeCache(), &fakeMailer{})
	updated, err := svc.SetRole(context.Background(), 1, "Admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}
