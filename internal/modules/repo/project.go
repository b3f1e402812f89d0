package repo

import (
	"context"
	"time"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project, act *model.ProjectActivity) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Project, error)
	Update(ctx context.Context, p *model.Project, act *model.ProjectActivity) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertCollaborator(ctx context.Context, c *model.ProjectCollaborator, act *model.ProjectActivity) error
	RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID, act *model.ProjectActivity) (bool, error)
	AcceptInvitation(ctx context.Context, projectID, userID uuid.UUID, at time.Time) (bool, error)
	ListActivity(ctx context.Context, projectID uuid.UUID, limit int) ([]*model.ProjectActivity, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func appendProjectActivity(tx *gorm.DB, projectID uuid.UUID, act *model.ProjectActivity) error {
	if act == nil {
		return nil
	}
	act.ProjectID = projectID
	return tx.Create(act).Error
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project, act *model.ProjectActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return appendProjectActivity(tx, p.ID, act)
	})
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB { return db.Order("invited_at ASC") }).
		Preload("Collaborators.User").
		Where(&model.Project{ID: id}).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForUser returns projects the user owns or collaborates on, most
// recently updated first.
func (r *projectRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Project, error) {
	shared := r.db.Model(&model.ProjectCollaborator{}).Select("project_id").Where("user_id = ?", userID)

	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB { return db.Order("invited_at ASC") }).
		Where("owner_id = ? OR id IN (?)", userID, shared).
		Order("updated_at DESC, id ASC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) Update(ctx context.Context, p *model.Project, act *model.ProjectActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(p).
			Select("name", "description", "tags", "visibility", "status", "settings", "metadata", "updated_at").
			Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return appendProjectActivity(tx, p.ID, act)
	})
}

// Delete removes the project; designs, versions, collaborators and activity
// are removed by ON DELETE CASCADE.
func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertCollaborator inserts the membership or, when it already exists,
// changes only its role.
func (r *projectRepo) UpsertCollaborator(ctx context.Context, c *model.ProjectCollaborator, act *model.ProjectActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit("User").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).Create(c).Error
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Project{}).Where("id = ?", c.ProjectID).Update("updated_at", time.Now()).Error; err != nil {
			return err
		}
		return appendProjectActivity(tx, c.ProjectID, act)
	})
}

func (r *projectRepo) RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID, act *model.ProjectActivity) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&model.ProjectCollaborator{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		if !removed {
			return nil
		}
		return appendProjectActivity(tx, projectID, act)
	})
	return removed, err
}

func (r *projectRepo) AcceptInvitation(ctx context.Context, projectID, userID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ? AND accepted_at IS NULL", projectID, userID).
		Update("accepted_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *projectRepo) ListActivity(ctx context.Context, projectID uuid.UUID, limit int) ([]*model.ProjectActivity, error) {
	q := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*model.ProjectActivity
	return out, q.Find(&out).Error
}
