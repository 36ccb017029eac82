package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/videohub-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videohub-backend/internal/models"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
)

// Мок сервиса подписок с методом Create
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userUID, planID string) (*paymentprovider.SubscriptionIntent, error) {
	args := m.Called(ctx, userUID, planID)
	var intent *paymentprovider.SubscriptionIntent
	if args.Get(0) != nil {
		intent = args.Get(0).(*paymentprovider.SubscriptionIntent)
	}
	return intent, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		mockIntent     *paymentprovider.SubscriptionIntent
		mockErr        error
		callService    bool
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:        "valid request",
			requestBody: models.CreateSubscriptionRequest{PlanID: "gold"},
			userUID:     "uid-1",
			mockIntent: &paymentprovider.SubscriptionIntent{
				ExternalRef: "I-ABC123",
				ApprovalURL: "https://paypal.example/approve/I-ABC123",
			},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"subscriptionId": "I-ABC123",
				"approvalUrl":    "https://paypal.example/approve/I-ABC123",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			userUID:        "uid-1",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing plan",
			requestBody:    models.CreateSubscriptionRequest{},
			userUID:        "uid-1",
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field PlanID is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "missing user identity",
			requestBody:    models.CreateSubscriptionRequest{PlanID: "gold"},
			userUID:        "",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
			wantStatus:     "Error",
		},
		{
			name:           "provider not configured",
			requestBody:    models.CreateSubscriptionRequest{PlanID: "gold"},
			userUID:        "uid-1",
			mockErr:        paymentprovider.ErrNotConfigured,
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "payment provider is not configured",
			wantStatus:     "Error",
		},
		{
			name:        "provider rejected request",
			requestBody: models.CreateSubscriptionRequest{PlanID: "gold"},
			userUID:     "uid-1",
			mockErr: &paymentprovider.GatewayError{
				Provider:   "paypal",
				StatusCode: http.StatusUnprocessableEntity,
				Body:       `{"name":"INVALID_REQUEST"}`,
			},
			callService:    true,
			wantStatusCode: http.StatusBadGateway,
			wantError:      `payment provider error (422): {"name":"INVALID_REQUEST"}`,
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.callService {
				serviceMock.On("Create", mock.Anything, tt.userUID, mock.Anything).
					Return(tt.mockIntent, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/create", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
