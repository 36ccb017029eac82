package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/videohub-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/password"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *RepoMock) SetAdmin(ctx context.Context, id string, isAdmin bool) (*models.User, error) {
	args := m.Called(ctx, id, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestService(repo *RepoMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(repo, jwt.NewJWTMaker("test-secret", time.Hour), log)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock)
		req        models.RegisterRequest
		wantErr    error
	}{
		{
			name: "email is normalized before storing",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(nil, repository.ErrNotFound).Once()
				repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "user@example.com" && !u.IsAdmin && u.PasswordHash != ""
				})).Return("id-1", nil).Once()
			},
			req: models.RegisterRequest{
				Email:    "  User@Example.COM ",
				Password: "password123",
				FullName: "Test User",
			},
		},
		{
			name: "duplicate email",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(&models.User{ID: "id-1", Email: "user@example.com"}, nil).Once()
			},
			req: models.RegisterRequest{
				Email:    "user@example.com",
				Password: "password123",
				FullName: "Test User",
			},
			wantErr: ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := newTestService(repo)

			id, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "id-1", id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("password123")
	require.NoError(t, err)
	admin := &models.User{
		ID: "id-1", Email: "admin@example.com", PasswordHash: hash, IsAdmin: true,
	}

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock)
		req        models.LoginRequest
		wantRole   string
		wantErr    error
	}{
		{
			name: "admin gets admin role claim",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetUserByEmail", mock.Anything, "admin@example.com").
					Return(admin, nil).Once()
			},
			req:      models.LoginRequest{Email: "admin@example.com", Password: "password123"},
			wantRole: RoleAdmin,
		},
		{
			name: "wrong password",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetUserByEmail", mock.Anything, "admin@example.com").
					Return(admin, nil).Once()
			},
			req:     models.LoginRequest{Email: "admin@example.com", Password: "wrong"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "unknown email looks like wrong password",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			req:     models.LoginRequest{Email: "ghost@example.com", Password: "password123"},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := newTestService(repo)

			token, user, err := svc.Login(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, user)

			claims, err := svc.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserUID)
			assert.Equal(t, tt.wantRole, claims.Role)
		})
	}
}

func TestService_SetAdmin(t *testing.T) {
	repo := new(RepoMock)
	repo.On("SetAdmin", mock.Anything, "id-1", false).
		Return(nil, repository.ErrLastAdmin).Once()

	svc := newTestService(repo)
	_, err := svc.SetAdmin(context.Background(), "id-1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLastAdmin)
	repo.AssertExpectations(t)
}
