package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockDesignRepo is a mock implementation of DesignRepo
type MockDesignRepo struct {
	mock.Mock
}

func (m *MockDesignRepo) Create(ctx context.Context, d *model.Design, act *model.DesignActivity) error {
	args := m.Called(ctx, d, act)
	return args.Error(0)
}

func (m *MockDesignRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Design), args.Error(1)
}

func (m *MockDesignRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Design, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Design), args.Error(1)
}

func (m *MockDesignRepo) Update(ctx context.Context, d *model.Design, act *model.DesignActivity) error {
	args := m.Called(ctx, d, act)
	return args.Error(0)
}

func (m *MockDesignRepo) UpdateSettings(ctx context.Context, d *model.Design, act *model.DesignActivity) error {
	args := m.Called(ctx, d, act)
	return args.Error(0)
}

func (m *MockDesignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDesignRepo) CreateVersion(ctx context.Context, in repo.CreateVersionInput) (*repo.CreateVersionResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.CreateVersionResult), args.Error(1)
}

func (m *MockDesignRepo) ListVersions(ctx context.Context, designID uuid.UUID) ([]*model.DesignVersion, error) {
	args := m.Called(ctx, designID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DesignVersion), args.Error(1)
}

func (m *MockDesignRepo) ListActivity(ctx context.Context, designID uuid.UUID, limit int) ([]*model.DesignActivity, error) {
	args := m.Called(ctx, designID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DesignActivity), args.Error(1)
}

type designFixture struct {
	owner, editor, admin, viewer, stranger uuid.UUID
	project                                *model.Project
	design                                 *model.Design
	designs                                *MockDesignRepo
	projects                               *MockProjectRepo
	svc                                    *designService
	pub                                    *recordingPublisher
}

// newDesignFixture builds project P owned by owner, with editor, admin and
// viewer collaborators, and a design in P created by the editor.
func newDesignFixture(t *testing.T) *designFixture {
	t.Helper()
	f := &designFixture{
		owner: uuid.New(), editor: uuid.New(), admin: uuid.New(), viewer: uuid.New(), stranger: uuid.New(),
		designs:  &MockDesignRepo{},
		projects: &MockProjectRepo{},
		pub:      &recordingPublisher{},
	}
	f.project = sharedProject(f.owner, f.editor, f.admin)
	f.project.Collaborators = append(f.project.Collaborators,
		model.ProjectCollaborator{ProjectID: f.project.ID, UserID: f.viewer, Role: model.RoleViewer})
	f.design = model.NewDesign(f.project.ID, f.editor, "Hero", "")
	f.design.ID = uuid.New()

	f.designs.On("GetByID", mock.Anything, f.design.ID).Return(f.design, nil).Maybe()
	f.projects.On("GetByID", mock.Anything, f.project.ID).Return(f.project, nil).Maybe()

	f.svc = NewDesignService(f.designs, f.projects, NewActivityNotifier(f.pub, "codesign.activity", zap.NewNop())).(*designService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestDesignService_EditorUpdatesButCannotChangeSettings(t *testing.T) {
	ctx := context.Background()
	f := newDesignFixture(t)
	// editor U2 on project P owned by U1; the design belongs to P
	f.design.CreatorID = f.owner

	f.designs.On("Update", ctx, f.design, mock.MatchedBy(func(a *model.DesignActivity) bool {
		return a.Action == model.DesignUpdated && a.UserID == f.editor
	})).Return(nil)

	name := "Hero v2"
	out, err := f.svc.Update(ctx, f.editor, f.design.ID, UpdateDesignInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Hero v2", out.Name)
	assert.Equal(t, 1, out.CurrentVersion)

	_, err = f.svc.UpdateSettings(ctx, f.editor, f.design.ID, model.DefaultDesignSettings())
	assert.ErrorIs(t, err, ErrAccessDenied)
	f.designs.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"activity.design.updated"}, f.pub.Keys())
}

func TestDesignService_AccessMatrix(t *testing.T) {
	ctx := context.Background()

	type op struct {
		name string
		call func(f *designFixture, caller uuid.UUID) error
	}
	get := op{"get", func(f *designFixture, c uuid.UUID) error {
		_, err := f.svc.Get(ctx, c, f.design.ID)
		return err
	}}
	update := op{"update", func(f *designFixture, c uuid.UUID) error {
		_, err := f.svc.Update(ctx, c, f.design.ID, UpdateDesignInput{})
		return err
	}}
	settings := op{"settings", func(f *designFixture, c uuid.UUID) error {
		_, err := f.svc.UpdateSettings(ctx, c, f.design.ID, model.DefaultDesignSettings())
		return err
	}}
	del := op{"delete", func(f *designFixture, c uuid.UUID) error {
		return f.svc.Delete(ctx, c, f.design.ID)
	}}

	tests := []struct {
		op      op
		who     string
		allowed bool
	}{
		{get, "viewer", true},
		{get, "stranger", false},
		{update, "viewer", false},
		{update, "editor", true},
		{settings, "admin", true},
		{settings, "editor", false},
		{settings, "owner", true},
		{del, "admin", false},
		{del, "editor", true},
		{del, "owner", true},
	}

	for _, tt := range tests {
		t.Run(tt.op.name+"/"+tt.who, func(t *testing.T) {
			f := newDesignFixture(t)
			caller := map[string]uuid.UUID{
				"owner": f.owner, "editor": f.editor, "admin": f.admin, "viewer": f.viewer, "stranger": f.stranger,
			}[tt.who]
			f.designs.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			f.designs.On("UpdateSettings", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			f.designs.On("Delete", mock.Anything, f.design.ID).Return(nil).Maybe()

			err := tt.op.call(f, caller)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrAccessDenied)
			}
		})
	}
}

func TestDesignService_DesignCollaboratorsGrantNothing(t *testing.T) {
	ctx := context.Background()
	f := newDesignFixture(t)
	f.design.Collaborators = []model.DesignCollaborator{{DesignID: f.design.ID, UserID: f.stranger, Role: model.RoleAdmin}}

	_, err := f.svc.Get(ctx, f.stranger, f.design.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDesignService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("editor creates", func(t *testing.T) {
		f := newDesignFixture(t)
		f.designs.On("Create", ctx, mock.MatchedBy(func(d *model.Design) bool {
			return d.ProjectID == f.project.ID && d.CreatorID == f.editor && d.CurrentVersion == 1
		}), mock.MatchedBy(func(a *model.DesignActivity) bool {
			return a.Action == model.DesignCreated
		})).Return(nil)

		d, err := f.svc.Create(ctx, f.editor, CreateDesignInput{ProjectID: f.project.ID, Name: "Checkout"})
		require.NoError(t, err)
		assert.Equal(t, model.DefaultCanvas(), d.Canvas)
		assert.Equal(t, []string{"activity.design.created"}, f.pub.Keys())
	})

	t.Run("viewer denied", func(t *testing.T) {
		f := newDesignFixture(t)
		_, err := f.svc.Create(ctx, f.viewer, CreateDesignInput{ProjectID: f.project.ID, Name: "Checkout"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("missing project", func(t *testing.T) {
		f := newDesignFixture(t)
		missing := uuid.New()
		f.projects.On("GetByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)
		_, err := f.svc.Create(ctx, f.editor, CreateDesignInput{ProjectID: missing, Name: "Checkout"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no project id", func(t *testing.T) {
		f := newDesignFixture(t)
		_, err := f.svc.Create(ctx, f.editor, CreateDesignInput{Name: "Checkout"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDesignService_UpdateRejectsNonGroupChildren(t *testing.T) {
	ctx := context.Background()
	f := newDesignFixture(t)
	layers := []model.Layer{{
		ID: "a", Name: "Text", Type: model.LayerText, Visible: true, Opacity: 1,
		Children: []model.Layer{{ID: "b", Name: "Inner", Type: model.LayerShape, Visible: true, Opacity: 1}},
	}}

	_, err := f.svc.Update(ctx, f.editor, f.design.ID, UpdateDesignInput{Layers: &layers})
	assert.ErrorIs(t, err, ErrValidation)
	f.designs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDesignService_UpdateStampsLayerMetadata(t *testing.T) {
	ctx := context.Background()
	f := newDesignFixture(t)
	earlier := fixedNow.Add(-time.Hour)
	stamp := model.LayerMetadata{CreatedAt: &earlier, CreatedBy: &f.owner, LastModified: &earlier, LastModifiedBy: &f.owner}
	f.design.Layers = []model.Layer{
		{ID: "keep", Name: "Logo", Type: model.LayerImage, Visible: true, Opacity: 1, Metadata: stamp},
		{ID: "edit", Name: "Title", Type: model.LayerText, Visible: true, Opacity: 1, Metadata: stamp},
	}
	f.designs.On("Update", ctx, f.design, mock.Anything).Return(nil)

	forged := model.LayerMetadata{CreatedAt: &fixedNow, CreatedBy: &f.stranger}
	layers := []model.Layer{
		{ID: "keep", Name: "Logo", Type: model.LayerImage, Visible: true, Opacity: 1, Metadata: forged},
		{ID: "edit", Name: "Headline", Type: model.LayerText, Visible: true, Opacity: 1, Metadata: forged},
		{ID: "group", Name: "Nav", Type: model.LayerGroup, Visible: true, Opacity: 1, Metadata: forged,
			Children: []model.Layer{{ID: "link", Name: "Home", Type: model.LayerText, Visible: true, Opacity: 1, Metadata: forged}}},
	}

	out, err := f.svc.Update(ctx, f.editor, f.design.ID, UpdateDesignInput{Layers: &layers})
	require.NoError(t, err)
	require.Len(t, out.Layers, 3)

	keep := out.Layers[0].Metadata
	assert.Equal(t, f.owner, *keep.CreatedBy)
	assert.Equal(t, earlier, *keep.CreatedAt)
	assert.Equal(t, f.owner, *keep.LastModifiedBy)
	assert.Equal(t, earlier, *keep.LastModified)

	edit := out.Layers[1].Metadata
	assert.Equal(t, f.owner, *edit.CreatedBy)
	assert.Equal(t, earlier, *edit.CreatedAt)
	assert.Equal(t, f.editor, *edit.LastModifiedBy)
	assert.Equal(t, fixedNow, *edit.LastModified)

	for _, m := range []model.LayerMetadata{out.Layers[2].Metadata, out.Layers[2].Children[0].Metadata} {
		assert.Equal(t, f.editor, *m.CreatedBy)
		assert.Equal(t, fixedNow, *m.CreatedAt)
		assert.Equal(t, f.editor, *m.LastModifiedBy)
		assert.Equal(t, fixedNow, *m.LastModified)
	}
}

func TestDesignService_CreateVersion(t *testing.T) {
	ctx := context.Background()
	f := newDesignFixture(t)

	act := model.NewDesignActivity(f.design.ID, model.DesignVersioned, f.editor, "Created Version 2", model.Properties{"version": 2}, fixedNow)
	v := &model.DesignVersion{DesignID: f.design.ID, Version: 2, Name: "Version 2"}
	f.designs.On("CreateVersion", ctx, repo.CreateVersionInput{
		DesignID: f.design.ID, UserID: f.editor, Now: fixedNow,
	}).Return(&repo.CreateVersionResult{Design: f.design, Version: v, Activity: &act}, nil)

	got, err := f.svc.CreateVersion(ctx, f.editor, f.design.ID, CreateVersionInput{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, []string{"activity.design.versioned"}, f.pub.Keys())

	_, err = f.svc.CreateVersion(ctx, f.viewer, f.design.ID, CreateVersionInput{})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDesignService_CanJoin(t *testing.T) {
	ctx := context.Background()
	f := newDesignFixture(t)
	missing, broken := uuid.New(), uuid.New()
	f.designs.On("GetByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)
	f.designs.On("GetByID", ctx, broken).Return(nil, errors.New("connection reset"))

	ok, err := f.svc.CanJoin(ctx, f.viewer, f.design.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanJoin(ctx, f.stranger, f.design.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanJoin(ctx, f.viewer, missing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.CanJoin(ctx, f.viewer, broken)
	assert.Error(t, err)
}
