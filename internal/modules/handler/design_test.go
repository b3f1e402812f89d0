package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amansoomro062/codesign/internal/middleware"
	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

// MockDesignService is a mock implementation of DesignService
type MockDesignService struct {
	mock.Mock
}

func (m *MockDesignService) ListByProject(ctx context.Context, caller, projectID uuid.UUID) ([]*model.Design, error) {
	args := m.Called(ctx, caller, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Design), args.Error(1)
}

func (m *MockDesignService) Get(ctx context.Context, caller, id uuid.UUID) (*model.Design, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Design), args.Error(1)
}

func (m *MockDesignService) Create(ctx context.Context, caller uuid.UUID, in service.CreateDesignInput) (*model.Design, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Design), args.Error(1)
}

func (m *MockDesignService) Update(ctx context.Context, caller, id uuid.UUID, in service.UpdateDesignInput) (*model.Design, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Design), args.Error(1)
}

func (m *MockDesignService) UpdateSettings(ctx context.Context, caller, id uuid.UUID, settings model.DesignSettings) (*model.Design, error) {
	args := m.Called(ctx, caller, id, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Design), args.Error(1)
}

func (m *MockDesignService) Delete(ctx context.Context, caller, id uuid.UUID) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockDesignService) CreateVersion(ctx context.Context, caller, id uuid.UUID, in service.CreateVersionInput) (*model.DesignVersion, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DesignVersion), args.Error(1)
}

func (m *MockDesignService) ListVersions(ctx context.Context, caller, id uuid.UUID) ([]*model.DesignVersion, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DesignVersion), args.Error(1)
}

func (m *MockDesignService) Activity(ctx context.Context, caller, id uuid.UUID) ([]*model.DesignActivity, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DesignActivity), args.Error(1)
}

func (m *MockDesignService) CanJoin(ctx context.Context, userID, designID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, designID)
	return args.Bool(0), args.Error(1)
}

// setupAuthedRouter returns a router whose requests are authenticated as user.
func setupAuthedRouter(user uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user)
		c.Next()
	})
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := sonic.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestDesignHandler_UpdateDesign(t *testing.T) {
	user := uuid.New()
	designID := uuid.New()
	name := "Checkout"

	tests := []struct {
		name           string
		id             string
		body           any
		setup          func(*MockDesignService)
		expectedStatus int
	}{
		{
			name: "editor updates content",
			id:   designID.String(),
			body: map[string]any{"name": name},
			setup: func(svc *MockDesignService) {
				svc.On("Update", mock.Anything, user, designID, mock.MatchedBy(func(in service.UpdateDesignInput) bool {
					return in.Name != nil && *in.Name == name && in.Layers == nil
				})).Return(&model.Design{ID: designID, Name: name}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "viewer is refused",
			id:   designID.String(),
			body: map[string]any{"name": name},
			setup: func(svc *MockDesignService) {
				svc.On("Update", mock.Anything, user, designID, mock.Anything).Return(nil, service.ErrAccessDenied)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "rejected by validation",
			id:   designID.String(),
			body: map[string]any{"name": ""},
			setup: func(svc *MockDesignService) {
				svc.On("Update", mock.Anything, user, designID, mock.Anything).Return(nil, errors.Join(service.ErrValidation, errors.New("only groups have children")))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed id",
			id:             "not-a-uuid",
			body:           map[string]any{},
			setup:          func(*MockDesignService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing design",
			id:   designID.String(),
			body: map[string]any{},
			setup: func(svc *MockDesignService) {
				svc.On("Update", mock.Anything, user, designID, mock.Anything).Return(nil, service.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store failure",
			id:   designID.String(),
			body: map[string]any{},
			setup: func(svc *MockDesignService) {
				svc.On("Update", mock.Anything, user, designID, mock.Anything).Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDesignService{}
			tt.setup(svc)
			h := NewDesignHandler(svc)

			r := setupAuthedRouter(user)
			r.PUT("/designs/:id", h.UpdateDesign)

			req := httptest.NewRequest(http.MethodPut, "/designs/"+tt.id, jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestDesignHandler_UpdateDesignSettings_Forbidden(t *testing.T) {
	user := uuid.New()
	designID := uuid.New()

	svc := &MockDesignService{}
	svc.On("UpdateSettings", mock.Anything, user, designID, mock.Anything).Return(nil, service.ErrAccessDenied)
	h := NewDesignHandler(svc)

	r := setupAuthedRouter(user)
	r.PUT("/designs/:id/settings", h.UpdateDesignSettings)

	req := httptest.NewRequest(http.MethodPut, "/designs/"+designID.String()+"/settings",
		jsonBody(t, map[string]any{"allow_comments": false}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "access denied")
}

func TestDesignHandler_CreateDesign(t *testing.T) {
	user := uuid.New()
	projectID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := &MockDesignService{}
		svc.On("Create", mock.Anything, user, mock.MatchedBy(func(in service.CreateDesignInput) bool {
			return in.ProjectID == projectID && in.Name == "Home" && in.Canvas == nil
		})).Return(&model.Design{ID: uuid.New(), ProjectID: projectID, Name: "Home", CurrentVersion: 1}, nil)

		r := setupAuthedRouter(user)
		r.POST("/designs", NewDesignHandler(svc).CreateDesign)

		req := httptest.NewRequest(http.MethodPost, "/designs",
			jsonBody(t, map[string]any{"projectId": projectID, "name": "Home"}))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"current_version":1`)
		svc.AssertExpectations(t)
	})

	t.Run("missing name", func(t *testing.T) {
		svc := &MockDesignService{}
		r := setupAuthedRouter(user)
		r.POST("/designs", NewDesignHandler(svc).CreateDesign)

		req := httptest.NewRequest(http.MethodPost, "/designs",
			jsonBody(t, map[string]any{"projectId": projectID}))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDesignHandler_CreateVersion(t *testing.T) {
	user := uuid.New()
	designID := uuid.New()

	tests := []struct {
		name string
		body *bytes.Reader
		want service.CreateVersionInput
	}{
		{name: "without body", body: bytes.NewReader(nil), want: service.CreateVersionInput{}},
		{name: "with label", body: jsonBody(t, map[string]any{"name": "v-review"}), want: service.CreateVersionInput{Name: "v-review"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDesignService{}
			svc.On("CreateVersion", mock.Anything, user, designID, tt.want).
				Return(&model.DesignVersion{DesignID: designID, Version: 2}, nil)

			r := setupAuthedRouter(user)
			r.POST("/designs/:id/versions", NewDesignHandler(svc).CreateVersion)

			req := httptest.NewRequest(http.MethodPost, "/designs/"+designID.String()+"/versions", tt.body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusCreated, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestDesignHandler_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/designs/:id", NewDesignHandler(&MockDesignService{}).GetDesign)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/designs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDesignHandler_GetDesign_DerivedCounts(t *testing.T) {
	user := uuid.New()
	d := model.NewDesign(uuid.New(), user, "Pricing", "")
	d.ID = uuid.New()
	d.Layers = []model.Layer{
		{ID: "l1", Name: "Hero", Type: model.LayerShape, Visible: true, Opacity: 1},
		{ID: "l2", Name: "Footer", Type: model.LayerShape, Visible: true, Opacity: 1},
	}
	d.Components = []model.Component{{ID: "c1", Name: "Card"}}
	d.CurrentVersion = 4

	svc := &MockDesignService{}
	svc.On("Get", mock.Anything, user, d.ID).Return(d, nil)

	r := setupAuthedRouter(user)
	r.GET("/designs/:id", NewDesignHandler(svc).GetDesign)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/designs/"+d.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	assert.EqualValues(t, 2, out.Data["layer_count"])
	assert.EqualValues(t, 1, out.Data["component_count"])
	assert.EqualValues(t, 3, out.Data["version_count"])
	assert.Equal(t, "Pricing", out.Data["name"])
}
