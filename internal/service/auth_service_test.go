package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostelhub/mess-api/internal/models"
	appErrors "github.com/hostelhub/mess-api/pkg/errors"
)

type fakeAuthRepo struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	emailTokens   map[string]*models.EmailToken
	created       []*models.User
	revokedAll    []string
	audits        []*models.AuditLog
	verified      []string
	passwordSet   map[string]string
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		usersByEmail:  map[string]*models.User{},
		usersByID:     map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
		emailTokens:   map[string]*models.EmailToken{},
		passwordSet:   map[string]string{},
	}
}

func (f *fakeAuthRepo) addUser(user *models.User) {
	f.usersByEmail[user.Email] = user
	f.usersByID[user.ID] = user
}

func (f *fakeAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := f.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) Create(_ context.Context, user *models.User) error {
	f.created = append(f.created, user)
	f.addUser(user)
	return nil
}

func (f *fakeAuthRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (f *fakeAuthRepo) UpdatePassword(_ context.Context, id, hash string, _ time.Time) error {
	f.passwordSet[id] = hash
	return nil
}

func (f *fakeAuthRepo) MarkEmailVerified(_ context.Context, id string, _ time.Time) error {
	f.verified = append(f.verified, id)
	if user, ok := f.usersByID[id]; ok {
		user.EmailVerified = true
	}
	return nil
}

func (f *fakeAuthRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	f.revokedAll = append(f.revokedAll, userID)
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := f.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string, at time.Time) error {
	for _, rt := range f.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &at
		}
	}
	return nil
}

func (f *fakeAuthRepo) CreateEmailToken(_ context.Context, token *models.EmailToken) error {
	f.emailTokens[token.Token] = token
	return nil
}

func (f *fakeAuthRepo) FindEmailToken(_ context.Context, token string, purpose models.EmailTokenPurpose) (*models.EmailToken, error) {
	if et, ok := f.emailTokens[token]; ok && et.Purpose == purpose {
		return et, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) MarkEmailTokenUsed(_ context.Context, id string, at time.Time) error {
	for _, et := range f.emailTokens {
		if et.ID == id {
			et.UsedAt = &at
		}
	}
	return nil
}

func (f *fakeAuthRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	f.audits = append(f.audits, log)
	return nil
}

type fakeMail struct {
	verifications []string
	resets        []string
	tokens        []string
}

func (f *fakeMail) EnqueueVerification(to, token string) error {
	f.verifications = append(f.verifications, to)
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeMail) EnqueuePasswordReset(to, token string) error {
	f.resets = append(f.resets, to)
	f.tokens = append(f.tokens, token)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "mess-api-test",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func verifiedUser(t *testing.T) *models.User {
	return &models.User{
		ID:            "u1",
		Email:         "student@hostel.edu",
		PasswordHash:  hashPassword(t, "secret123"),
		FullName:      "Student One",
		Role:          models.RoleStudent,
		RoomNo:        "214",
		PhoneNo:       "9876543210",
		EmailVerified: true,
		Active:        true,
	}
}

func TestRegisterCreatesStudentAndQueuesVerification(t *testing.T) {
	repo := newFakeAuthRepo()
	mail := &fakeMail{}
	svc := NewAuthService(repo, mail, nil, zap.NewNop(), testAuthConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@hostel.edu",
		Password: "secret123",
		FullName: "New Student",
		RoomNo:   "108",
		PhoneNo:  "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, info.Role)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].EmailVerified)
	assert.Equal(t, []string{"new@hostel.edu"}, mail.verifications)
	require.Len(t, repo.emailTokens, 1)
}

func TestRegisterRejectsInvalidRoomNo(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), &fakeMail{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@hostel.edu",
		Password: "secret123",
		FullName: "New Student",
		RoomNo:   "10A",
		PhoneNo:  "9876543210",
	})
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addUser(verifiedUser(t))
	svc := NewAuthService(repo, &fakeMail{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "student@hostel.edu",
		Password: "secret123",
		FullName: "Clone",
		RoomNo:   "214",
		PhoneNo:  "9876543210",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addUser(verifiedUser(t))
	svc := NewAuthService(repo, &fakeMail{}, nil, zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@hostel.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "u1", resp.User.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginRejectsUnverifiedEmail(t *testing.T) {
	repo := newFakeAuthRepo()
	user := verifiedUser(t)
	user.EmailVerified = false
	repo.addUser(user)
	svc := NewAuthService(repo, &fakeMail{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@hostel.edu", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailNotVerified.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addUser(verifiedUser(t))
	svc := NewAuthService(repo, &fakeMail{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@hostel.edu", Password: "wrong-pass"})
	require.Error(t, err)
}

func TestVerifyEmailFlow(t *testing.T) {
	repo := newFakeAuthRepo()
	mail := &fakeMail{}
	svc := NewAuthService(repo, mail, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@hostel.edu",
		Password: "secret123",
		FullName: "New Student",
		RoomNo:   "108",
		PhoneNo:  "9876543210",
	})
	require.NoError(t, err)
	require.Len(t, mail.tokens, 1)

	require.NoError(t, svc.VerifyEmail(context.Background(), mail.tokens[0]))
	require.Len(t, repo.verified, 1)

	// Single use.
	err = svc.VerifyEmail(context.Background(), mail.tokens[0])
	require.Error(t, err)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addUser(verifiedUser(t))
	svc := NewAuthService(repo, &fakeMail{}, nil, zap.NewNop(), testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@hostel.edu", Password: "secret123"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The old token was revoked on use.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.addUser(verifiedUser(t))
	mail := &fakeMail{}
	svc := NewAuthService(repo, mail, nil, zap.NewNop(), testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "student@hostel.edu"}))
	require.Len(t, mail.resets, 1)
	require.Len(t, mail.tokens, 1)

	require.NoError(t, svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: mail.tokens[0], NewPassword: "brandnew99"}))
	assert.Contains(t, repo.passwordSet, "u1")
	assert.Contains(t, repo.revokedAll, "u1")
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	mail := &fakeMail{}
	svc := NewAuthService(newFakeAuthRepo(), mail, nil, zap.NewNop(), testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "nobody@hostel.edu"}))
	assert.Empty(t, mail.resets)
}
