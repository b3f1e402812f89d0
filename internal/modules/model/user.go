package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type UserPreferences struct {
	Theme         string `json:"theme" validate:"omitempty,oneof=light dark system"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{Theme: "light", Notifications: true, Language: "en"}
}

func (p UserPreferences) Validate() error { return validateStruct(p) }

// Value stores preferences as jsonb so that map-based updates encode them too.
func (p UserPreferences) Value() (driver.Value, error) {
	b, err := sonic.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *UserPreferences) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = DefaultPreferences()
		return nil
	case []byte:
		return sonic.Unmarshal(v, p)
	case string:
		return sonic.UnmarshalString(v, p)
	default:
		return fmt.Errorf("unsupported preferences type %T", src)
	}
}

type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	Email        string          `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string          `gorm:"type:text;not null" json:"-"`
	Avatar       string          `gorm:"type:text" json:"avatar"`
	Preferences  UserPreferences `gorm:"type:jsonb" json:"preferences"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// User <-> Project (owned)
	Projects []Project `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }

// PublicUser is the profile visible to other users.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
