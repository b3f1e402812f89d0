package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amansoomro062/codesign/internal/modules/access"
	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const activityPageSize = 100

type ProjectService interface {
	List(ctx context.Context, caller uuid.UUID) ([]*model.Project, error)
	Create(ctx context.Context, caller uuid.UUID, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, caller, id uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, caller, id uuid.UUID, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, caller, id uuid.UUID) error
	AddCollaborator(ctx context.Context, caller, id uuid.UUID, email string, role model.Role) (*model.Project, error)
	RemoveCollaborator(ctx context.Context, caller, id, userID uuid.UUID) error
	AcceptInvitation(ctx context.Context, caller, id uuid.UUID) error
	Activity(ctx context.Context, caller, id uuid.UUID) ([]*model.ProjectActivity, error)
}

type CreateProjectInput struct {
	Name        string
	Description string
	IsPublic    bool
	Tags        []string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Tags        *[]string
	Visibility  *model.Visibility
	Status      *model.ProjectStatus
	Settings    *model.ProjectSettings
	Metadata    *model.ProjectMetadata
}

type projectService struct {
	r        repo.ProjectRepo
	users    repo.UserRepo
	notifier *ActivityNotifier
	now      func() time.Time
}

func NewProjectService(r repo.ProjectRepo, users repo.UserRepo, notifier *ActivityNotifier) ProjectService {
	return &projectService{r: r, users: users, notifier: notifier, now: time.Now}
}

// load fetches the project and checks that caller holds at least min.
func (s *projectService) load(ctx context.Context, caller, id uuid.UUID, min model.Role) (*model.Project, error) {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "project")
	}
	if !access.CanAccess(caller, access.ForProject(p), min) {
		return nil, ErrAccessDenied
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, caller uuid.UUID) ([]*model.Project, error) {
	return s.r.ListForUser(ctx, caller)
}

func (s *projectService) Create(ctx context.Context, caller uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	p := model.NewProject(caller, strings.TrimSpace(in.Name), in.Description)
	if in.IsPublic {
		p.Visibility = model.VisibilityPublic
	}
	if in.Tags != nil {
		p.Tags = datatypes.JSONSlice[string](in.Tags)
	}
	if err := p.Validate(); err != nil {
		return nil, translate(err, "project")
	}

	act := model.NewProjectActivity(uuid.Nil, model.ProjectCreated, caller, "Created project "+p.Name, s.now())
	if err := s.r.Create(ctx, p, &act); err != nil {
		return nil, translate(err, "project")
	}
	s.notifier.Notify(ctx, act.Event())
	return p, nil
}

func (s *projectService) Get(ctx context.Context, caller, id uuid.UUID) (*model.Project, error) {
	return s.load(ctx, caller, id, model.RoleViewer)
}

func (s *projectService) Update(ctx context.Context, caller, id uuid.UUID, in UpdateProjectInput) (*model.Project, error) {
	p, err := s.load(ctx, caller, id, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	prevStatus := p.Status

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Tags != nil {
		p.Tags = datatypes.JSONSlice[string](*in.Tags)
	}
	if in.Visibility != nil {
		p.Visibility = *in.Visibility
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Settings != nil {
		p.Settings = *in.Settings
	}
	if in.Metadata != nil {
		p.Metadata = *in.Metadata
	}
	if err := p.Validate(); err != nil {
		return nil, translate(err, "project")
	}

	now := s.now()
	p.UpdatedAt = now
	action, details := model.ProjectUpdated, "Updated project"
	switch {
	case p.Status == model.ProjectArchived && prevStatus != model.ProjectArchived:
		action, details = model.ProjectArchive, "Archived project"
	case prevStatus == model.ProjectArchived && p.Status != model.ProjectArchived:
		action, details = model.ProjectRestored, "Restored project"
	}
	act := model.NewProjectActivity(p.ID, action, caller, details, now)
	if err := s.r.Update(ctx, p, &act); err != nil {
		return nil, translate(err, "project")
	}
	s.notifier.Notify(ctx, act.Event())
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, caller, id uuid.UUID) error {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		return translate(err, "project")
	}
	if !access.IsProjectOwner(caller, p) {
		return ErrAccessDenied
	}
	return translate(s.r.Delete(ctx, id), "project")
}

func (s *projectService) AddCollaborator(ctx context.Context, caller, id uuid.UUID, email string, role model.Role) (*model.Project, error) {
	p, err := s.load(ctx, caller, id, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	invitee, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("invitee %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	c, err := p.AddCollaborator(invitee.ID, role, now)
	if err != nil {
		return nil, translate(err, "collaborator")
	}
	act := model.NewProjectActivity(p.ID, model.ProjectShared, caller,
		fmt.Sprintf("Shared with %s as %s", invitee.Email, role), now)
	if err := s.r.UpsertCollaborator(ctx, c, &act); err != nil {
		return nil, translate(err, "collaborator")
	}
	c.User = invitee
	s.notifier.Notify(ctx, act.Event())
	return p, nil
}

func (s *projectService) RemoveCollaborator(ctx context.Context, caller, id, userID uuid.UUID) error {
	p, err := s.load(ctx, caller, id, model.RoleAdmin)
	if err != nil {
		return err
	}
	if !p.RemoveCollaborator(userID) {
		return fmt.Errorf("collaborator %w", ErrNotFound)
	}
	act := model.NewProjectActivity(p.ID, model.ProjectUpdated, caller, "Removed collaborator "+userID.String(), s.now())
	removed, err := s.r.RemoveCollaborator(ctx, p.ID, userID, &act)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("collaborator %w", ErrNotFound)
	}
	s.notifier.Notify(ctx, act.Event())
	return nil
}

func (s *projectService) AcceptInvitation(ctx context.Context, caller, id uuid.UUID) error {
	ok, err := s.r.AcceptInvitation(ctx, id, caller, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pending invitation %w", ErrNotFound)
	}
	return nil
}

func (s *projectService) Activity(ctx context.Context, caller, id uuid.UUID) ([]*model.ProjectActivity, error) {
	if _, err := s.load(ctx, caller, id, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.r.ListActivity(ctx, id, activityPageSize)
}
