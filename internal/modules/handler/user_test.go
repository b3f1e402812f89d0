package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetPublic(ctx context.Context, id uuid.UUID) (*model.PublicUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicUser), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, in service.UpdateProfileInput) (*model.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	args := m.Called(ctx, id, current, next)
	return args.Error(0)
}

func (m *MockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserService) Search(ctx context.Context, caller uuid.UUID, query string) ([]model.PublicUser, error) {
	args := m.Called(ctx, caller, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PublicUser), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Authenticate(raw string) (uuid.UUID, error) {
	args := m.Called(raw)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestUserHandler_GetMe_HidesPasswordHash(t *testing.T) {
	user := uuid.New()
	svc := &MockUserService{}
	svc.On("Get", mock.Anything, user).Return(&model.User{ID: user, Name: "Ada", PasswordHash: "$argon2id$secret"}, nil)

	r := setupAuthedRouter(user)
	r.GET("/users/me", NewUserHandler(svc).GetMe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "argon2id")
}

func TestUserHandler_GetUser_Public(t *testing.T) {
	id := uuid.New()
	svc := &MockUserService{}
	svc.On("GetPublic", mock.Anything, id).Return(&model.PublicUser{ID: id, Name: "Grace"}, nil)
	svc.On("GetPublic", mock.Anything, mock.Anything).Return(nil, service.ErrNotFound)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/:id", NewUserHandler(svc).GetUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_ChangePassword(t *testing.T) {
	user := uuid.New()

	tests := []struct {
		name           string
		body           map[string]any
		setup          func(*MockUserService)
		expectedStatus int
	}{
		{
			name: "changed",
			body: map[string]any{"currentPassword": "old-secret", "newPassword": "new-secret"},
			setup: func(svc *MockUserService) {
				svc.On("ChangePassword", mock.Anything, user, "old-secret", "new-secret").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong current password",
			body: map[string]any{"currentPassword": "guess", "newPassword": "new-secret"},
			setup: func(svc *MockUserService) {
				svc.On("ChangePassword", mock.Anything, user, "guess", "new-secret").Return(service.ErrValidation)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			body:           map[string]any{"newPassword": "new-secret"},
			setup:          func(*MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockUserService{}
			tt.setup(svc)

			r := setupAuthedRouter(user)
			r.PUT("/users/me/password", NewUserHandler(svc).ChangePassword)

			req := httptest.NewRequest(http.MethodPut, "/users/me/password", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_SearchUsers(t *testing.T) {
	user := uuid.New()
	svc := &MockUserService{}
	svc.On("Search", mock.Anything, user, "ada").Return([]model.PublicUser{{ID: uuid.New(), Name: "Ada"}}, nil)

	r := setupAuthedRouter(user)
	r.GET("/users/search/:query", NewUserHandler(svc).SearchUsers)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/search/ada", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []model.PublicUser `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		setup          func(*MockAuthService)
		expectedStatus int
	}{
		{
			name: "created",
			body: map[string]any{"name": "Ada", "email": "ada@example.com", "password": "secret1"},
			setup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, service.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"}).
					Return(&service.AuthResult{Token: "tok", User: &model.User{ID: uuid.New()}}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "email taken",
			body: map[string]any{"name": "Ada", "email": "ada@example.com", "password": "secret1"},
			setup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrValidation)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad email",
			body:           map[string]any{"name": "Ada", "email": "not-an-email", "password": "secret1"},
			setup:          func(*MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{}
			tt.setup(svc)

			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.POST("/auth/register", NewAuthHandler(svc).Register)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("Login", mock.Anything, "ada@example.com", "wrong").Return(nil, service.ErrUnauthenticated)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(svc).Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, map[string]any{"email": "ada@example.com", "password": "wrong"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
