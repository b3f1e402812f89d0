package repo

import (
	"context"
	"time"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DesignRepo interface {
	Create(ctx context.Context, d *model.Design, act *model.DesignActivity) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Design, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Design, error)
	Update(ctx context.Context, d *model.Design, act *model.DesignActivity) error
	UpdateSettings(ctx context.Context, d *model.Design, act *model.DesignActivity) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateVersion(ctx context.Context, in CreateVersionInput) (*CreateVersionResult, error)
	ListVersions(ctx context.Context, designID uuid.UUID) ([]*model.DesignVersion, error)
	ListActivity(ctx context.Context, designID uuid.UUID, limit int) ([]*model.DesignActivity, error)
}

type CreateVersionInput struct {
	DesignID    uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	Thumbnail   string
	Now         time.Time
}

type CreateVersionResult struct {
	Design   *model.Design
	Version  *model.DesignVersion
	Activity *model.DesignActivity
}

// designContentColumns are written by a plain update. current_version is
// never among them; only CreateVersion advances it.
var designContentColumns = []string{
	"name", "description", "canvas", "layers", "components", "styles",
	"status", "tags", "metadata", "updated_at",
}

type designRepo struct{ db *gorm.DB }

func NewDesignRepo(db *gorm.DB) DesignRepo {
	return &designRepo{db: db}
}

func appendDesignActivity(tx *gorm.DB, designID uuid.UUID, act *model.DesignActivity) error {
	if act == nil {
		return nil
	}
	act.DesignID = designID
	return tx.Create(act).Error
}

func (r *designRepo) Create(ctx context.Context, d *model.Design, act *model.DesignActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(d).Error; err != nil {
			return err
		}
		return appendDesignActivity(tx, d.ID, act)
	})
}

func (r *designRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Design, error) {
	var d model.Design
	err := r.db.WithContext(ctx).
		Preload("Collaborators").
		Where(&model.Design{ID: id}).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *designRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Design, error) {
	var designs []*model.Design
	err := r.db.WithContext(ctx).
		Preload("Collaborators").
		Where("project_id = ?", projectID).
		Order("updated_at DESC, id ASC").
		Find(&designs).Error
	return designs, err
}

func (r *designRepo) updateColumns(ctx context.Context, d *model.Design, cols []string, act *model.DesignActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(d).Select(cols).Updates(d)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return appendDesignActivity(tx, d.ID, act)
	})
}

// Update is last-write-wins at document granularity.
func (r *designRepo) Update(ctx context.Context, d *model.Design, act *model.DesignActivity) error {
	return r.updateColumns(ctx, d, designContentColumns, act)
}

func (r *designRepo) UpdateSettings(ctx context.Context, d *model.Design, act *model.DesignActivity) error {
	return r.updateColumns(ctx, d, []string{"settings", "updated_at"}, act)
}

func (r *designRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Design{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateVersion snapshots the design under a row lock, so concurrent callers
// get consecutive numbers. The version row, the counter bump and the
// activity entry commit together or not at all.
func (r *designRepo) CreateVersion(ctx context.Context, in CreateVersionInput) (*CreateVersionResult, error) {
	var out *CreateVersionResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d model.Design
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(&model.Design{ID: in.DesignID}).First(&d).Error; err != nil {
			return err
		}

		v := d.NextVersion(in.UserID, in.Name, in.Description, in.Now)
		v.Thumbnail = in.Thumbnail
		if err := tx.Create(&v).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Design{}).Where("id = ?", d.ID).Updates(map[string]any{
			"current_version": d.CurrentVersion,
			"updated_at":      in.Now,
		}).Error; err != nil {
			return err
		}

		act := model.NewDesignActivity(d.ID, model.DesignVersioned, in.UserID,
			"Created "+v.Name, model.Properties{"version": v.Version}, in.Now)
		if err := appendDesignActivity(tx, d.ID, &act); err != nil {
			return err
		}

		d.UpdatedAt = in.Now
		out = &CreateVersionResult{Design: &d, Version: &v, Activity: &act}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *designRepo) ListVersions(ctx context.Context, designID uuid.UUID) ([]*model.DesignVersion, error) {
	var out []*model.DesignVersion
	err := r.db.WithContext(ctx).
		Where("design_id = ?", designID).
		Order("version ASC").
		Find(&out).Error
	return out, err
}

func (r *designRepo) ListActivity(ctx context.Context, designID uuid.UUID, limit int) ([]*model.DesignActivity, error) {
	q := r.db.WithContext(ctx).
		Where("design_id = ?", designID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*model.DesignActivity
	return out, q.Find(&out).Error
}
