package service

import (
	"context"
	"strings"
	"time"

	"github.com/amansoomro062/codesign/internal/modules/access"
	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DesignService interface {
	ListByProject(ctx context.Context, caller, projectID uuid.UUID) ([]*model.Design, error)
	Get(ctx context.Context, caller, id uuid.UUID) (*model.Design, error)
	Create(ctx context.Context, caller uuid.UUID, in CreateDesignInput) (*model.Design, error)
	Update(ctx context.Context, caller, id uuid.UUID, in UpdateDesignInput) (*model.Design, error)
	UpdateSettings(ctx context.Context, caller, id uuid.UUID, settings model.DesignSettings) (*model.Design, error)
	Delete(ctx context.Context, caller, id uuid.UUID) error
	CreateVersion(ctx context.Context, caller, id uuid.UUID, in CreateVersionInput) (*model.DesignVersion, error)
	ListVersions(ctx context.Context, caller, id uuid.UUID) ([]*model.DesignVersion, error)
	Activity(ctx context.Context, caller, id uuid.UUID) ([]*model.DesignActivity, error)
	// CanJoin reports whether the user may join the design's live room.
	CanJoin(ctx context.Context, userID, designID uuid.UUID) (bool, error)
}

type CreateDesignInput struct {
	ProjectID   uuid.UUID
	Name        string
	Description string
	Canvas      *model.Canvas
	Tags        []string
}

type UpdateDesignInput struct {
	Name        *string
	Description *string
	Canvas      *model.Canvas
	Layers      *[]model.Layer
	Components  *[]model.Component
	Styles      *model.Styles
	Status      *model.DesignStatus
	Tags        *[]string
	Metadata    *model.DesignMetadata
}

type CreateVersionInput struct {
	Name        string
	Description string
	Thumbnail   string
}

type designService struct {
	r        repo.DesignRepo
	projects repo.ProjectRepo
	notifier *ActivityNotifier
	now      func() time.Time
}

func NewDesignService(r repo.DesignRepo, projects repo.ProjectRepo, notifier *ActivityNotifier) DesignService {
	return &designService{r: r, projects: projects, notifier: notifier, now: time.Now}
}

// load fetches the design with its parent project without checking access.
func (s *designService) load(ctx context.Context, id uuid.UUID) (*model.Design, *model.Project, error) {
	d, err := s.r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, translate(err, "design")
	}
	p, err := s.projects.GetByID(ctx, d.ProjectID)
	if err != nil {
		return nil, nil, translate(err, "project")
	}
	return d, p, nil
}

func (s *designService) authorize(ctx context.Context, caller, id uuid.UUID, min model.Role) (*model.Design, *model.Project, error) {
	d, p, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAccess(caller, access.ForDesign(d, p), min) {
		return nil, nil, ErrAccessDenied
	}
	return d, p, nil
}

func (s *designService) projectFor(ctx context.Context, caller, projectID uuid.UUID, min model.Role) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, translate(err, "project")
	}
	if !access.CanAccess(caller, access.ForProject(p), min) {
		return nil, ErrAccessDenied
	}
	return p, nil
}

func (s *designService) ListByProject(ctx context.Context, caller, projectID uuid.UUID) ([]*model.Design, error) {
	if _, err := s.projectFor(ctx, caller, projectID, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.r.ListByProject(ctx, projectID)
}

func (s *designService) Get(ctx context.Context, caller, id uuid.UUID) (*model.Design, error) {
	d, _, err := s.authorize(ctx, caller, id, model.RoleViewer)
	return d, err
}

func (s *designService) Create(ctx context.Context, caller uuid.UUID, in CreateDesignInput) (*model.Design, error) {
	if in.ProjectID == uuid.Nil {
		return nil, validationErr("projectId is required")
	}
	if _, err := s.projectFor(ctx, caller, in.ProjectID, model.RoleEditor); err != nil {
		return nil, err
	}

	d := model.NewDesign(in.ProjectID, caller, strings.TrimSpace(in.Name), in.Description)
	if in.Canvas != nil {
		d.Canvas = *in.Canvas
	}
	if in.Tags != nil {
		d.Tags = datatypes.JSONSlice[string](in.Tags)
	}
	if err := d.Validate(); err != nil {
		return nil, translate(err, "design")
	}

	act := model.NewDesignActivity(uuid.Nil, model.DesignCreated, caller, "Created design "+d.Name, nil, s.now())
	if err := s.r.Create(ctx, d, &act); err != nil {
		return nil, translate(err, "design")
	}
	s.notifier.Notify(ctx, act.Event())
	return d, nil
}

func (s *designService) Update(ctx context.Context, caller, id uuid.UUID, in UpdateDesignInput) (*model.Design, error) {
	d, _, err := s.authorize(ctx, caller, id, model.RoleEditor)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.Canvas != nil {
		d.Canvas = *in.Canvas
	}
	now := s.now()
	if in.Layers != nil {
		model.StampLayers(d.Layers, *in.Layers, caller, now)
		d.Layers = *in.Layers
	}
	if in.Components != nil {
		d.Components = *in.Components
	}
	if in.Styles != nil {
		d.Styles = *in.Styles
	}
	if in.Status != nil {
		d.Status = *in.Status
	}
	if in.Tags != nil {
		d.Tags = datatypes.JSONSlice[string](*in.Tags)
	}
	if in.Metadata != nil {
		d.Metadata = *in.Metadata
	}
	if err := d.Validate(); err != nil {
		return nil, translate(err, "design")
	}

	d.UpdatedAt = now
	act := model.NewDesignActivity(d.ID, model.DesignUpdated, caller, "Updated design", nil, now)
	if err := s.r.Update(ctx, d, &act); err != nil {
		return nil, translate(err, "design")
	}
	s.notifier.Notify(ctx, act.Event())
	return d, nil
}

func (s *designService) UpdateSettings(ctx context.Context, caller, id uuid.UUID, settings model.DesignSettings) (*model.Design, error) {
	d, _, err := s.authorize(ctx, caller, id, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	d.Settings = settings
	if err := d.Validate(); err != nil {
		return nil, translate(err, "design")
	}

	now := s.now()
	d.UpdatedAt = now
	act := model.NewDesignActivity(d.ID, model.DesignUpdated, caller, "Updated design settings", nil, now)
	if err := s.r.UpdateSettings(ctx, d, &act); err != nil {
		return nil, translate(err, "design")
	}
	s.notifier.Notify(ctx, act.Event())
	return d, nil
}

func (s *designService) Delete(ctx context.Context, caller, id uuid.UUID) error {
	d, p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteDesign(caller, d, p) {
		return ErrAccessDenied
	}
	return translate(s.r.Delete(ctx, id), "design")
}

func (s *designService) CreateVersion(ctx context.Context, caller, id uuid.UUID, in CreateVersionInput) (*model.DesignVersion, error) {
	if _, _, err := s.authorize(ctx, caller, id, model.RoleEditor); err != nil {
		return nil, err
	}
	res, err := s.r.CreateVersion(ctx, repo.CreateVersionInput{
		DesignID:    id,
		UserID:      caller,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		Now:         s.now(),
	})
	if err != nil {
		return nil, translate(err, "design")
	}
	s.notifier.Notify(ctx, res.Activity.Event())
	return res.Version, nil
}

func (s *designService) ListVersions(ctx context.Context, caller, id uuid.UUID) ([]*model.DesignVersion, error) {
	if _, _, err := s.authorize(ctx, caller, id, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.r.ListVersions(ctx, id)
}

func (s *designService) Activity(ctx context.Context, caller, id uuid.UUID) ([]*model.DesignActivity, error) {
	if _, _, err := s.authorize(ctx, caller, id, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.r.ListActivity(ctx, id, activityPageSize)
}

func (s *designService) CanJoin(ctx context.Context, userID, designID uuid.UUID) (bool, error) {
	_, _, err := s.authorize(ctx, userID, designID, model.RoleViewer)
	switch {
	case err == nil:
		return true, nil
	case errorsIsAny(err, ErrAccessDenied, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
