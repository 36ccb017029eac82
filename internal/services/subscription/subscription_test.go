package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpsertSubscriptionByExternalRef(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) FindSubscriptionByExternalRef(ctx context.Context, externalRef string) (*models.Subscription, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) FindActiveSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) SetSubscriptionStatusByExternalRef(ctx context.Context, externalRef, status string) (int, error) {
	args := m.Called(ctx, externalRef, status)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateSubscriptionIntent(ctx context.Context, userUID, planID string) (*paymentprovider.SubscriptionIntent, error) {
	args := m.Called(ctx, userUID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SubscriptionIntent), args.Error(1)
}

func (m *GatewayMock) FetchDetails(ctx context.Context, externalRef string) (*paymentprovider.SubscriptionDetails, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SubscriptionDetails), args.Error(1)
}

func (m *GatewayMock) VerifyAndParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*paymentprovider.WebhookEvent, error) {
	args := m.Called(ctx, payload, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.WebhookEvent), args.Error(1)
}

func (m *GatewayMock) PlanDisplayName(planID string) string {
	return m.Called(planID).String(0)
}

func (m *GatewayMock) Name() string {
	return m.Called().String(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, gw *GatewayMock, cache *CacheMock) *Service {
	svc := New(repo, gw, cache, newNoopLogger())
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Create(t *testing.T) {
	repo := new(RepoMock)
	gw := new(GatewayMock)
	cache := new(CacheMock)
	svc := newService(repo, gw, cache)

	intent := &paymentprovider.SubscriptionIntent{
		ExternalRef: "I-ABC123",
		ApprovalURL: "https://paypal.example/approve/I-ABC123",
	}
	gw.On("CreateSubscriptionIntent", mock.Anything, "user-1", "gold").Return(intent, nil).Once()

	got, err := svc.Create(context.Background(), "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, "I-ABC123", got.ExternalRef)
	assert.Equal(t, intent.ApprovalURL, got.ApprovalURL)

	// Локальная запись до подтверждения не создаётся.
	repo.AssertNotCalled(t, "UpsertSubscriptionByExternalRef", mock.Anything, mock.Anything)
	gw.AssertExpectations(t)
}

func TestService_Confirm(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, gw *GatewayMock, cache *CacheMock)
		userUID    string
		ref        string
		wantEnd    time.Time
		wantErr    error
	}{
		{
			name: "gold plan without provider period gets one year",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("FetchDetails", mock.Anything, "I-ABC123").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "I-ABC123",
					Status:      paymentprovider.StatusActive,
					PlanID:      "gold",
					PeriodStart: &start,
				}, nil).Once()
				gw.On("PlanDisplayName", "gold").Return("Gold")
				gw.On("Name").Return("paypal")
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-ABC123").
					Return(nil, repository.ErrNotFound).Once()
				repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.EndDate != nil &&
						sub.EndDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) &&
						sub.Status == models.SubscriptionStatusActive
				})).Return(&models.Subscription{
					ExternalRef: "I-ABC123",
					UserID:      "user-1",
					Status:      models.SubscriptionStatusActive,
				}, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			userUID: "user-1",
			ref:     "I-ABC123",
			wantEnd: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "silver plan without provider period gets one month",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("FetchDetails", mock.Anything, "I-SIL001").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "I-SIL001",
					Status:      paymentprovider.StatusApprovalPending,
					PlanID:      "silver",
					PeriodStart: &start,
				}, nil).Once()
				gw.On("PlanDisplayName", "silver").Return("Silver")
				gw.On("Name").Return("paypal")
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-SIL001").
					Return(nil, repository.ErrNotFound).Once()
				repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.EndDate != nil &&
						sub.EndDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
				})).Return(&models.Subscription{ExternalRef: "I-SIL001", UserID: "user-1"}, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			userUID: "user-1",
			ref:     "I-SIL001",
			wantEnd: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "provider period wins over derived end date",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("FetchDetails", mock.Anything, "sub_42").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "sub_42",
					Status:      paymentprovider.StatusActive,
					PlanID:      "gold",
					PeriodStart: &start,
					PeriodEnd:   &periodEnd,
				}, nil).Once()
				gw.On("Name").Return("stripe")
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "sub_42").
					Return(nil, repository.ErrNotFound).Once()
				repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.EndDate != nil && sub.EndDate.Equal(periodEnd)
				})).Return(&models.Subscription{ExternalRef: "sub_42", UserID: "user-1"}, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			userUID: "user-1",
			ref:     "sub_42",
			wantEnd: periodEnd,
		},
		{
			name: "ownership violation",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("FetchDetails", mock.Anything, "I-ABC123").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "I-ABC123",
					Status:      paymentprovider.StatusActive,
					PlanID:      "gold",
				}, nil).Once()
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-ABC123").
					Return(&models.Subscription{ExternalRef: "I-ABC123", UserID: "user-2"}, nil).Once()
			},
			userUID: "user-1",
			ref:     "I-ABC123",
			wantErr: ErrOwnershipViolation,
		},
		{
			name: "cancelled at provider is not confirmable",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("FetchDetails", mock.Anything, "I-DEAD01").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "I-DEAD01",
					Status:      paymentprovider.StatusCancelled,
					PlanID:      "gold",
				}, nil).Once()
			},
			userUID: "user-1",
			ref:     "I-DEAD01",
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gw := new(GatewayMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, gw, cache)
			svc := newService(repo, gw, cache)

			_, err := svc.Confirm(context.Background(), tt.userUID, tt.ref)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
			gw.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Confirm_Idempotent(t *testing.T) {
	// Повторное подтверждение тем же пользователем перезаписывает ту же
	// запись и не создаёт новую.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := new(RepoMock)
	gw := new(GatewayMock)
	cache := new(CacheMock)

	details := &paymentprovider.SubscriptionDetails{
		ExternalRef: "I-ABC123",
		Status:      paymentprovider.StatusActive,
		PlanID:      "gold",
		PeriodStart: &start,
	}
	gw.On("FetchDetails", mock.Anything, "I-ABC123").Return(details, nil).Twice()
	gw.On("PlanDisplayName", "gold").Return("Gold")
	gw.On("Name").Return("paypal")

	stored := &models.Subscription{ExternalRef: "I-ABC123", UserID: "user-1",
		Status: models.SubscriptionStatusActive}
	repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-ABC123").
		Return(nil, repository.ErrNotFound).Once()
	repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-ABC123").
		Return(stored, nil).Once()
	repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.Anything).
		Return(stored, nil).Twice()
	cache.On("Invalidate", "subscription_status:user-1").Return(nil).Twice()

	svc := newService(repo, gw, cache)
	_, err := svc.Confirm(context.Background(), "user-1", "I-ABC123")
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), "user-1", "I-ABC123")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_ConfirmSession(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, gw *GatewayMock, cache *CacheMock)
		sessionID  string
		wantErr    error
	}{
		{
			name:       "rejects id without session prefix",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {},
			sessionID:  "sub_42",
			wantErr:    ErrInvalidSessionID,
		},
		{
			name: "unknown user reference",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("FetchDetails", mock.Anything, "cs_test_1").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "sub_42",
					Status:      paymentprovider.StatusActive,
					PlanID:      "silver",
					UserRef:     "ghost",
				}, nil).Once()
				repo.On("GetUserByID", mock.Anything, "ghost").
					Return(nil, repository.ErrNotFound).Once()
			},
			sessionID: "cs_test_1",
			wantErr:   ErrUnknownUser,
		},
		{
			name: "session resolves user and activates subscription",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
				gw.On("FetchDetails", mock.Anything, "cs_test_2").Return(&paymentprovider.SubscriptionDetails{
					ExternalRef: "sub_43",
					Status:      paymentprovider.StatusActive,
					PlanID:      "silver",
					UserRef:     "user-1",
					PeriodEnd:   &end,
				}, nil).Once()
				gw.On("Name").Return("stripe")
				repo.On("GetUserByID", mock.Anything, "user-1").
					Return(&models.User{ID: "user-1"}, nil).Once()
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "sub_43").
					Return(nil, repository.ErrNotFound).Once()
				repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.UserID == "user-1" && sub.ExternalRef == "sub_43"
				})).Return(&models.Subscription{ExternalRef: "sub_43", UserID: "user-1"}, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			sessionID: "cs_test_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gw := new(GatewayMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, gw, cache)
			svc := newService(repo, gw, cache)

			_, err := svc.ConfirmSession(context.Background(), tt.sessionID)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
			gw.AssertExpectations(t)
		})
	}
}

func TestService_HandleWebhook(t *testing.T) {
	periodStart := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, gw *GatewayMock, cache *CacheMock)
		event      *paymentprovider.WebhookEvent
	}{
		{
			name: "activation refreshes existing record keeping the owner",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("Name").Return("stripe")
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "sub_42").
					Return(&models.Subscription{
						ExternalRef: "sub_42", UserID: "user-1", PlanID: "gold",
						StartDate: periodStart,
					}, nil).Once()
				repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.UserID == "user-1" && sub.EndDate.Equal(periodEnd)
				})).Return(&models.Subscription{ExternalRef: "sub_42", UserID: "user-1"}, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			event: &paymentprovider.WebhookEvent{
				Kind:        paymentprovider.EventActivated,
				ExternalRef: "sub_42",
				PlanID:      "gold",
				PeriodStart: &periodStart,
				PeriodEnd:   &periodEnd,
			},
		},
		{
			name: "activation before confirm creates the record from user reference",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				gw.On("Name").Return("paypal")
				gw.On("PlanDisplayName", "gold").Return("Gold")
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-NEW01").
					Return(nil, repository.ErrNotFound).Once()
				repo.On("GetUserByID", mock.Anything, "user-1").
					Return(&models.User{ID: "user-1"}, nil).Once()
				repo.On("UpsertSubscriptionByExternalRef", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.UserID == "user-1" &&
						sub.EndDate.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
				})).Return(&models.Subscription{ExternalRef: "I-NEW01", UserID: "user-1"}, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			event: &paymentprovider.WebhookEvent{
				Kind:        paymentprovider.EventActivated,
				ExternalRef: "I-NEW01",
				UserRef:     "user-1",
				PlanID:      "gold",
				PeriodStart: &periodStart,
			},
		},
		{
			name: "activation for unknown subscription without user reference is skipped",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-GHOST").
					Return(nil, repository.ErrNotFound).Once()
			},
			event: &paymentprovider.WebhookEvent{
				Kind:        paymentprovider.EventActivated,
				ExternalRef: "I-GHOST",
			},
		},
		{
			name: "cancellation for unknown subscription is skipped",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "I-GHOST").
					Return(nil, repository.ErrNotFound).Once()
			},
			event: &paymentprovider.WebhookEvent{
				Kind:        paymentprovider.EventCancelled,
				ExternalRef: "I-GHOST",
			},
		},
		{
			name: "cancellation marks the record cancelled",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				repo.On("FindSubscriptionByExternalRef", mock.Anything, "sub_42").
					Return(&models.Subscription{ExternalRef: "sub_42", UserID: "user-1"}, nil).Once()
				repo.On("SetSubscriptionStatusByExternalRef", mock.Anything, "sub_42",
					models.SubscriptionStatusCancelled).Return(1, nil).Once()
				cache.On("Invalidate", "subscription_status:user-1").Return(nil).Once()
			},
			event: &paymentprovider.WebhookEvent{
				Kind:        paymentprovider.EventCancelled,
				ExternalRef: "sub_42",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gw := new(GatewayMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, gw, cache)
			svc := newService(repo, gw, cache)

			err := svc.HandleWebhook(context.Background(), tt.event)
			require.NoError(t, err)
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Status(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, gw *GatewayMock, cache *CacheMock)
		want       bool
	}{
		{
			name: "active record with future end date gives access",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				cache.On("Get", "subscription_status:user-1", mock.Anything).Return(false, nil).Once()
				repo.On("FindActiveSubscriptionByUserID", mock.Anything, "user-1").
					Return(&models.Subscription{
						UserID: "user-1", PlanID: "gold",
						Status:    models.SubscriptionStatusActive,
						StartDate: past, EndDate: &future,
					}, nil).Once()
				gw.On("PlanDisplayName", "gold").Return("Gold")
				cache.On("Set", "subscription_status:user-1", mock.Anything, statusCacheTTL).Return(nil).Once()
			},
			want: true,
		},
		{
			name: "active record with expired end date gives no access",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				cache.On("Get", "subscription_status:user-1", mock.Anything).Return(false, nil).Once()
				repo.On("FindActiveSubscriptionByUserID", mock.Anything, "user-1").
					Return(&models.Subscription{
						UserID: "user-1", PlanID: "gold",
						Status:    models.SubscriptionStatusActive,
						StartDate: past.AddDate(0, -11, 0), EndDate: &past,
					}, nil).Once()
				gw.On("PlanDisplayName", "gold").Return("Gold")
				cache.On("Set", "subscription_status:user-1", mock.Anything, statusCacheTTL).Return(nil).Once()
			},
			want: false,
		},
		{
			name: "no record means not subscribed",
			setupMocks: func(repo *RepoMock, gw *GatewayMock, cache *CacheMock) {
				cache.On("Get", "subscription_status:user-1", mock.Anything).Return(false, nil).Once()
				repo.On("FindActiveSubscriptionByUserID", mock.Anything, "user-1").
					Return(nil, repository.ErrNotFound).Once()
				cache.On("Set", "subscription_status:user-1", mock.Anything, statusCacheTTL).Return(nil).Once()
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gw := new(GatewayMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, gw, cache)
			svc := newService(repo, gw, cache)
			svc.now = func() time.Time { return now }

			got, err := svc.HasActiveSubscription(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Status_CachedEntryExpiresAtReadTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name    string
		endDate *time.Time
		want    bool
	}{
		{name: "cached entry past its end date gives no access", endDate: &past, want: false},
		{name: "cached entry with future end date keeps access", endDate: &future, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gw := new(GatewayMock)
			cache := new(CacheMock)

			cache.On("Get", "subscription_status:user-1", mock.Anything).
				Run(func(args mock.Arguments) {
					st := args.Get(1).(*models.SubscriptionStatus)
					*st = models.SubscriptionStatus{
						IsSubscribed: true,
						Plan:         "gold",
						EndDate:      tt.endDate,
					}
				}).Return(true, nil).Once()

			svc := newService(repo, gw, cache)
			svc.now = func() time.Time { return now }

			got, err := svc.HasActiveSubscription(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertNotCalled(t, "FindActiveSubscriptionByUserID", mock.Anything, mock.Anything)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Status_RepositoryError(t *testing.T) {
	repo := new(RepoMock)
	gw := new(GatewayMock)
	cache := new(CacheMock)
	cache.On("Get", "subscription_status:user-1", mock.Anything).Return(false, nil).Once()
	repo.On("FindActiveSubscriptionByUserID", mock.Anything, "user-1").
		Return(nil, errors.New("connection refused")).Once()

	svc := newService(repo, gw, cache)
	_, err := svc.Status(context.Background(), "user-1")
	require.Error(t, err)
}
