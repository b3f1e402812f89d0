package model

import (
	"fmt"
	"reflect"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---------------------------------------------------------------------------
// Canvas
// ---------------------------------------------------------------------------

type Grid struct {
	Enabled bool   `json:"enabled"`
	Size    int    `json:"size" validate:"gte=1"`
	Color   string `json:"color" validate:"omitempty,hexcolor"`
}

type Canvas struct {
	Width           int    `json:"width" validate:"gte=1"`
	Height          int    `json:"height" validate:"gte=1"`
	BackgroundColor string `json:"background_color" validate:"omitempty,hexcolor"`
	Grid            Grid   `json:"grid"`
}

func DefaultCanvas() Canvas {
	return Canvas{
		Width:           1920,
		Height:          1080,
		BackgroundColor: "#FFFFFF",
		Grid:            Grid{Enabled: true, Size: 20, Color: "#E5E7EB"},
	}
}

// UnmarshalJSON fills absent fields with their defaults.
func (c *Canvas) UnmarshalJSON(b []byte) error {
	type alias Canvas
	a := alias(DefaultCanvas())
	if err := sonic.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = Canvas(a)
	return nil
}

// ---------------------------------------------------------------------------
// Layers
// ---------------------------------------------------------------------------

type LayerType string

const (
	LayerGroup     LayerType = "group"
	LayerShape     LayerType = "shape"
	LayerText      LayerType = "text"
	LayerImage     LayerType = "image"
	LayerComponent LayerType = "component"
)

type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width" validate:"gte=0"`
	Height   float64 `json:"height" validate:"gte=0"`
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
}

func DefaultTransform() Transform {
	return Transform{Width: 100, Height: 100, ScaleX: 1, ScaleY: 1}
}

func (t *Transform) UnmarshalJSON(b []byte) error {
	type alias Transform
	a := alias(DefaultTransform())
	if err := sonic.Unmarshal(b, &a); err != nil {
		return err
	}
	*t = Transform(a)
	return nil
}

type LayerMetadata struct {
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	LastModified   *time.Time `json:"last_modified,omitempty"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by,omitempty"`
}

type Layer struct {
	ID         string        `json:"id" validate:"required"`
	Name       string        `json:"name" validate:"required"`
	Type       LayerType     `json:"type" validate:"oneof=group shape text image component"`
	Visible    bool          `json:"visible"`
	Locked     bool          `json:"locked"`
	Opacity    float64       `json:"opacity" validate:"gte=0,lte=1"`
	Transform  Transform     `json:"transform"`
	Properties Properties    `json:"properties,omitempty"`
	Children   []Layer       `json:"children,omitempty" validate:"dive"`
	Metadata   LayerMetadata `json:"metadata"`
}

func (l *Layer) UnmarshalJSON(b []byte) error {
	type alias Layer
	a := alias{Visible: true, Opacity: 1, Transform: DefaultTransform()}
	if err := sonic.Unmarshal(b, &a); err != nil {
		return err
	}
	*l = Layer(a)
	return nil
}

func (l Layer) Clone() Layer {
	out := l
	out.Properties = l.Properties.Clone()
	out.Metadata = LayerMetadata{
		CreatedAt:      cloneTime(l.Metadata.CreatedAt),
		CreatedBy:      cloneUUID(l.Metadata.CreatedBy),
		LastModified:   cloneTime(l.Metadata.LastModified),
		LastModifiedBy: cloneUUID(l.Metadata.LastModifiedBy),
	}
	out.Children = cloneLayers(l.Children)
	return out
}

func (l Layer) validateTree() error {
	if len(l.Children) > 0 && l.Type != LayerGroup {
		return fmt.Errorf("%w: layer %q of type %s cannot have children", ErrInvalidDocument, l.ID, l.Type)
	}
	if err := l.Properties.Validate(); err != nil {
		return err
	}
	for _, c := range l.Children {
		if err := c.validateTree(); err != nil {
			return err
		}
	}
	return nil
}

// StampLayers overwrites the metadata of next with server values. Layers
// whose id is not in prev are stamped as created by user at now. Known layers
// keep their creation stamp and get a new modification stamp only when their
// own content differs from prev.
func StampLayers(prev, next []Layer, user uuid.UUID, now time.Time) {
	known := make(map[string]Layer)
	indexLayers(prev, known)
	stampLayers(next, known, user, now)
}

func indexLayers(layers []Layer, into map[string]Layer) {
	for _, l := range layers {
		into[l.ID] = l
		indexLayers(l.Children, into)
	}
}

func stampLayers(layers []Layer, known map[string]Layer, user uuid.UUID, now time.Time) {
	for i := range layers {
		l := &layers[i]
		old, ok := known[l.ID]
		switch {
		case !ok:
			l.Metadata = LayerMetadata{
				CreatedAt:      cloneTime(&now),
				CreatedBy:      cloneUUID(&user),
				LastModified:   cloneTime(&now),
				LastModifiedBy: cloneUUID(&user),
			}
		case sameLayerContent(old, *l):
			l.Metadata = old.Clone().Metadata
		default:
			l.Metadata = LayerMetadata{
				CreatedAt:      cloneTime(old.Metadata.CreatedAt),
				CreatedBy:      cloneUUID(old.Metadata.CreatedBy),
				LastModified:   cloneTime(&now),
				LastModifiedBy: cloneUUID(&user),
			}
		}
		stampLayers(l.Children, known, user, now)
	}
}

// sameLayerContent compares the layer itself, ignoring metadata and children.
func sameLayerContent(a, b Layer) bool {
	a.Metadata, b.Metadata = LayerMetadata{}, LayerMetadata{}
	a.Children, b.Children = nil, nil
	if len(a.Properties) == 0 && len(b.Properties) == 0 {
		a.Properties, b.Properties = nil, nil
	}
	return reflect.DeepEqual(a, b)
}

func cloneLayers(in []Layer) []Layer {
	if in == nil {
		return nil
	}
	out := make([]Layer, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(u *uuid.UUID) *uuid.UUID {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}

// ---------------------------------------------------------------------------
// Components and styles
// ---------------------------------------------------------------------------

type Component struct {
	ID         string     `json:"id" validate:"required"`
	Name       string     `json:"name" validate:"required"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties,omitempty"`
	IsLibrary  bool       `json:"is_library"`
	UsageCount int        `json:"usage_count" validate:"gte=0"`
}

type ColorType string

const (
	ColorPrimary   ColorType = "primary"
	ColorSecondary ColorType = "secondary"
	ColorAccent    ColorType = "accent"
	ColorNeutral   ColorType = "neutral"
)

type ColorStyle struct {
	Name  string    `json:"name" validate:"required"`
	Value string    `json:"value" validate:"required"`
	Type  ColorType `json:"type" validate:"omitempty,oneof=primary secondary accent neutral"`
}

type TypographyStyle struct {
	Name       string  `json:"name" validate:"required"`
	FontFamily string  `json:"font_family"`
	FontSize   float64 `json:"font_size" validate:"gte=0"`
	FontWeight int     `json:"font_weight" validate:"gte=0,lte=1000"`
	LineHeight float64 `json:"line_height" validate:"gte=0"`
}

type SpacingStyle struct {
	Name  string  `json:"name" validate:"required"`
	Value float64 `json:"value"`
}

type Styles struct {
	Colors     []ColorStyle      `json:"colors" validate:"dive"`
	Typography []TypographyStyle `json:"typography" validate:"dive"`
	Spacing    []SpacingStyle    `json:"spacing" validate:"dive"`
}

func (s Styles) Clone() Styles {
	return Styles{
		Colors:     append([]ColorStyle(nil), s.Colors...),
		Typography: append([]TypographyStyle(nil), s.Typography...),
		Spacing:    append([]SpacingStyle(nil), s.Spacing...),
	}
}

// ---------------------------------------------------------------------------
// Design
// ---------------------------------------------------------------------------

type DesignStatus string

const (
	DesignDraft    DesignStatus = "draft"
	DesignInReview DesignStatus = "in-review"
	DesignApproved DesignStatus = "approved"
	DesignArchived DesignStatus = "archived"
)

type CollaborationMode string

const (
	ModeRealTime           CollaborationMode = "real-time"
	ModeConflictResolution CollaborationMode = "conflict-resolution"
	ModeManualMerge        CollaborationMode = "manual-merge"
)

type DesignSettings struct {
	AutoSave           bool              `json:"auto_save"`
	AutoSaveIntervalMs int               `json:"auto_save_interval_ms" validate:"gte=0"`
	AllowComments      bool              `json:"allow_comments"`
	AllowExport        bool              `json:"allow_export"`
	AllowVersioning    bool              `json:"allow_versioning"`
	CollaborationMode  CollaborationMode `json:"collaboration_mode" validate:"oneof=real-time conflict-resolution manual-merge"`
}

func DefaultDesignSettings() DesignSettings {
	return DesignSettings{
		AutoSave:           true,
		AutoSaveIntervalMs: 30000,
		AllowComments:      true,
		AllowExport:        true,
		AllowVersioning:    true,
		CollaborationMode:  ModeRealTime,
	}
}

func (s *DesignSettings) UnmarshalJSON(b []byte) error {
	type alias DesignSettings
	a := alias(DefaultDesignSettings())
	if err := sonic.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = DesignSettings(a)
	return nil
}

type DesignMetadata struct {
	Category       string   `json:"category,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	DesignSystem   string   `json:"design_system,omitempty"`
	ExportFormats  []string `json:"export_formats,omitempty"`
}

type Design struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string    `gorm:"type:varchar(1000)" json:"description" validate:"max=1000"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`

	// Read-only: invites happen at project level and access is decided by the
	// parent project.
	Collaborators []DesignCollaborator `gorm:"foreignKey:DesignID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"collaborators"`

	Canvas     Canvas      `gorm:"type:jsonb;serializer:json" json:"canvas"`
	Layers     []Layer     `gorm:"type:jsonb;serializer:json" json:"layers" validate:"dive"`
	Components []Component `gorm:"type:jsonb;serializer:json" json:"components" validate:"dive"`
	Styles     Styles      `gorm:"type:jsonb;serializer:json" json:"styles"`

	CurrentVersion int `gorm:"not null;default:1" json:"current_version"`

	Status   DesignStatus                `gorm:"type:text;not null;default:draft" json:"status" validate:"oneof=draft in-review approved archived"`
	Tags     datatypes.JSONSlice[string] `gorm:"type:jsonb" swaggertype:"array,string" json:"tags"`
	Metadata DesignMetadata              `gorm:"type:jsonb;serializer:json" json:"metadata"`
	Settings DesignSettings              `gorm:"type:jsonb;serializer:json" json:"settings"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Design <-> DesignVersion
	Versions []DesignVersion `gorm:"foreignKey:DesignID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Design <-> DesignActivity
	Activity []DesignActivity `gorm:"foreignKey:DesignID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Design) TableName() string { return "designs" }

// NewDesign returns an empty draft design at version 1.
func NewDesign(projectID, creatorID uuid.UUID, name, description string) *Design {
	return &Design{
		Name:           name,
		Description:    description,
		ProjectID:      projectID,
		CreatorID:      creatorID,
		Collaborators:  []DesignCollaborator{},
		Canvas:         DefaultCanvas(),
		Layers:         []Layer{},
		Components:     []Component{},
		CurrentVersion: 1,
		Status:         DesignDraft,
		Tags:           datatypes.JSONSlice[string]{},
		Settings:       DefaultDesignSettings(),
	}
}

// VersionCount is the number of stored snapshots. Version numbers start at
// 1 for the unsaved draft and every snapshot takes the next one, so the count
// follows from CurrentVersion.
func (d *Design) VersionCount() int {
	if d.CurrentVersion <= 1 {
		return 0
	}
	return d.CurrentVersion - 1
}

// MarshalJSON adds the derived layer, component and version counts.
func (d Design) MarshalJSON() ([]byte, error) {
	type alias Design
	return sonic.Marshal(struct {
		alias
		LayerCount     int `json:"layer_count"`
		ComponentCount int `json:"component_count"`
		VersionCount   int `json:"version_count"`
	}{
		alias:          alias(d),
		LayerCount:     len(d.Layers),
		ComponentCount: len(d.Components),
		VersionCount:   d.VersionCount(),
	})
}

func (d *Design) Validate() error {
	if err := validateStruct(d); err != nil {
		return err
	}
	for _, l := range d.Layers {
		if err := l.validateTree(); err != nil {
			return err
		}
	}
	for _, c := range d.Components {
		if err := c.Properties.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Design) IsCreator(userID uuid.UUID) bool { return d.CreatorID == userID }

// DesignSnapshot is the captured content of one version.
type DesignSnapshot struct {
	Layers     []Layer     `json:"layers"`
	Components []Component `json:"components"`
	Styles     Styles      `json:"styles"`
	Canvas     Canvas      `json:"canvas"`
}

// Snapshot deep-copies the design content so later edits to d never reach
// the returned value.
func (d *Design) Snapshot() DesignSnapshot {
	comps := make([]Component, len(d.Components))
	for i, c := range d.Components {
		c.Properties = c.Properties.Clone()
		comps[i] = c
	}
	layers := cloneLayers(d.Layers)
	if layers == nil {
		layers = []Layer{}
	}
	return DesignSnapshot{
		Layers:     layers,
		Components: comps,
		Styles:     d.Styles.Clone(),
		Canvas:     d.Canvas,
	}
}

// NextVersion captures the current content as version CurrentVersion+1 and
// advances the counter. An empty name becomes "Version N".
func (d *Design) NextVersion(userID uuid.UUID, name, description string, now time.Time) DesignVersion {
	n := d.CurrentVersion + 1
	if name == "" {
		name = fmt.Sprintf("Version %d", n)
	}
	v := DesignVersion{
		DesignID:    d.ID,
		Version:     n,
		Name:        name,
		Description: description,
		Data:        datatypes.NewJSONType(d.Snapshot()),
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	d.CurrentVersion = n
	return v
}

type DesignCollaborator struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	DesignID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_design_collaborator,priority:1" json:"-"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_design_collaborator,priority:2" json:"user_id"`
	Role       Role       `gorm:"type:text;not null;default:viewer" swaggertype:"string" json:"role"`
	InvitedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"invited_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

func (DesignCollaborator) TableName() string { return "design_collaborators" }

type DesignVersion struct {
	ID          uuid.UUID                          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DesignID    uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex:idx_design_version,priority:1" json:"design_id"`
	Version     int                                `gorm:"not null;uniqueIndex:idx_design_version,priority:2" json:"version"`
	Name        string                             `gorm:"type:text;not null" json:"name"`
	Description string                             `gorm:"type:text" json:"description,omitempty"`
	Data        datatypes.JSONType[DesignSnapshot] `gorm:"type:jsonb" swaggertype:"object" json:"data"`
	Thumbnail   string                             `gorm:"type:text" json:"thumbnail,omitempty"`
	CreatedBy   uuid.UUID                          `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time                          `gorm:"not null" json:"created_at"`
}

func (DesignVersion) TableName() string { return "design_versions" }

type DesignAction string

const (
	DesignCreated   DesignAction = "created"
	DesignUpdated   DesignAction = "updated"
	DesignShared    DesignAction = "shared"
	DesignVersioned DesignAction = "versioned"
	DesignExported  DesignAction = "exported"
	DesignCommented DesignAction = "commented"
)

type DesignActivity struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DesignID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_design_activity,priority:1" json:"design_id"`
	Action    DesignAction `gorm:"type:text;not null" json:"action"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null" json:"user_id"`
	Details   string       `gorm:"type:text" json:"details,omitempty"`
	Metadata  Properties   `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
	CreatedAt time.Time    `gorm:"not null;index:idx_design_activity,priority:2" json:"timestamp"`
}

func (DesignActivity) TableName() string { return "design_activities" }
