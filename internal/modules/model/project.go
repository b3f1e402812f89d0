package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrOwnerNotCollaborator = errors.New("the owner cannot be added as a collaborator")

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
	VisibilityPublic  Visibility = "public"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

type ProjectSettings struct {
	AllowComments      bool `json:"allow_comments"`
	AllowVersioning    bool `json:"allow_versioning"`
	AllowExport        bool `json:"allow_export"`
	AutoSave           bool `json:"auto_save"`
	AutoSaveIntervalMs int  `json:"auto_save_interval_ms" validate:"gte=0"`
}

func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		AllowComments:      true,
		AllowVersioning:    true,
		AllowExport:        true,
		AutoSave:           true,
		AutoSaveIntervalMs: 30000,
	}
}

type Budget struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency" validate:"omitempty,iso4217"`
}

type ProjectMetadata struct {
	Category string     `json:"category,omitempty"`
	Industry string     `json:"industry,omitempty"`
	Client   string     `json:"client,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Budget   *Budget    `json:"budget,omitempty"`
}

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string    `gorm:"type:varchar(1000)" json:"description" validate:"max=1000"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	Collaborators []ProjectCollaborator `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"collaborators"`

	Tags       datatypes.JSONSlice[string] `gorm:"type:jsonb" swaggertype:"array,string" json:"tags"`
	Visibility Visibility                  `gorm:"type:text;not null;default:private" json:"visibility" validate:"oneof=private team public"`
	Status     ProjectStatus               `gorm:"type:text;not null;default:draft" json:"status" validate:"oneof=draft active archived completed"`
	Settings   ProjectSettings             `gorm:"type:jsonb;serializer:json" json:"settings"`
	Metadata   ProjectMetadata             `gorm:"type:jsonb;serializer:json" json:"metadata"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> Design
	Designs []Design `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> ProjectActivity
	Activity []ProjectActivity `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }

// NewProject returns a draft private project with default settings.
func NewProject(owner uuid.UUID, name, description string) *Project {
	return &Project{
		Name:          name,
		Description:   description,
		OwnerID:       owner,
		Collaborators: []ProjectCollaborator{},
		Tags:          datatypes.JSONSlice[string]{},
		Visibility:    VisibilityPrivate,
		Status:        ProjectDraft,
		Settings:      DefaultProjectSettings(),
	}
}

func (p *Project) Validate() error { return validateStruct(p) }

func (p *Project) IsOwner(userID uuid.UUID) bool { return p.OwnerID == userID }

func (p *Project) Collaborator(userID uuid.UUID) (*ProjectCollaborator, bool) {
	for i := range p.Collaborators {
		if p.Collaborators[i].UserID == userID {
			return &p.Collaborators[i], true
		}
	}
	return nil, false
}

// AddCollaborator adds userID with role, or changes the role when userID is
// already a collaborator. The owner is never listed.
func (p *Project) AddCollaborator(userID uuid.UUID, role Role, now time.Time) (*ProjectCollaborator, error) {
	if p.IsOwner(userID) {
		return nil, ErrOwnerNotCollaborator
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if c, ok := p.Collaborator(userID); ok {
		c.Role = role
		return c, nil
	}
	p.Collaborators = append(p.Collaborators, ProjectCollaborator{
		ProjectID: p.ID,
		UserID:    userID,
		Role:      role,
		InvitedAt: now,
	})
	return &p.Collaborators[len(p.Collaborators)-1], nil
}

func (p *Project) RemoveCollaborator(userID uuid.UUID) bool {
	for i := range p.Collaborators {
		if p.Collaborators[i].UserID == userID {
			p.Collaborators = append(p.Collaborators[:i], p.Collaborators[i+1:]...)
			return true
		}
	}
	return false
}

type ProjectCollaborator struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_collaborator,priority:1" json:"-"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_project_collaborator,priority:2" json:"user_id"`
	Role       Role       `gorm:"type:text;not null;default:viewer" swaggertype:"string" json:"role"`
	InvitedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"invited_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`
}

func (ProjectCollaborator) TableName() string { return "project_collaborators" }

type ProjectAction string

const (
	ProjectCreated  ProjectAction = "created"
	ProjectUpdated  ProjectAction = "updated"
	ProjectShared   ProjectAction = "shared"
	ProjectArchive  ProjectAction = "archived"
	ProjectRestored ProjectAction = "restored"
)

type ProjectActivity struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID     `gorm:"type:uuid;not null;index:idx_project_activity,priority:1" json:"project_id"`
	Action    ProjectAction `gorm:"type:text;not null" json:"action"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null" json:"user_id"`
	Details   string        `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time     `gorm:"not null;index:idx_project_activity,priority:2" json:"timestamp"`
}

func (ProjectActivity) TableName() string { return "project_activities" }
