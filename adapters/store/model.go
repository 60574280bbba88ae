package store

import (
	"time"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

type ProfileModel struct {
	ID        string    `gorm:"primaryKey;size:36;column:id"`
	FullName  string    `gorm:"type:text;not null;default:'';column:full_name"`
	Role      string    `gorm:"size:16;not null;default:'student';column:role"`
	AvatarURL string    `gorm:"type:text;not null;default:'';column:avatar_url"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null;column:created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;column:updated_at"`
}

func (ProfileModel) TableName() string { return "profiles" }

func (m *ProfileModel) ToDomain() *domain.Profile {
	return &domain.Profile{
		ID:        m.ID,
		FullName:  m.FullName,
		Role:      domain.AccountRole(m.Role),
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToProfileModel(p *domain.Profile) *ProfileModel {
	role := string(p.Role)
	if role == "" {
		role = string(domain.RoleStudent)
	}
	return &ProfileModel{
		ID:        p.ID,
		FullName:  p.FullName,
		Role:      role,
		AvatarURL: p.AvatarURL,
	}
}

type MethodModel struct {
	ID          string    `gorm:"primaryKey;size:36;column:id"`
	Title       string    `gorm:"type:text;not null;column:title"`
	Description string    `gorm:"type:text;column:description"`
	Tags        []string  `gorm:"serializer:json;type:text;column:tags"`
	Level       string    `gorm:"size:16;column:level"`
	Direction   string    `gorm:"size:16;column:direction"`
	FileURL     string    `gorm:"type:text;column:file_url"`
	FileName    string    `gorm:"type:text;column:file_name"`
	FileSize    int64     `gorm:"column:file_size"`
	IconName    string    `gorm:"size:64;not null;default:'FileText';column:icon_name"`
	Format      string    `gorm:"size:16;column:format"`
	IsActive    bool      `gorm:"index;not null;column:is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index;not null;column:created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;not null;column:updated_at"`
}

func (MethodModel) TableName() string { return "methods" }

func (m *MethodModel) ToDomain() domain.Method {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Method{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Tags:        tags,
		Level:       m.Level,
		Direction:   m.Direction,
		FileURL:     m.FileURL,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		IconName:    m.IconName,
		Format:      m.Format,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToMethodModel(d *domain.Method) *MethodModel {
	return &MethodModel{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Tags:        d.Tags,
		Level:       d.Level,
		Direction:   d.Direction,
		FileURL:     d.FileURL,
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		IconName:    d.IconName,
		Format:      d.Format,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
	}
}

type ProgressModel struct {
	ID         string    `gorm:"primaryKey;size:36;column:id"`
	UserID     string    `gorm:"uniqueIndex:idx_progress_user_task;size:36;not null;column:user_id"`
	TaskID     string    `gorm:"uniqueIndex:idx_progress_user_task;size:64;not null;column:task_id"`
	Answer     string    `gorm:"type:text;column:answer"`
	AnswerHash string    `gorm:"size:64;column:answer_hash"`
	Feedback   string    `gorm:"type:text;column:feedback"`
	Completed  bool      `gorm:"not null;default:false;column:completed"`
	Attempts   int       `gorm:"not null;default:0;column:attempts"`
	CreatedAt  time.Time `gorm:"autoCreateTime;not null;column:created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;not null;column:updated_at"`
}

func (ProgressModel) TableName() string { return "user_progress" }

func (m *ProgressModel) ToDomain() domain.Progress {
	return domain.Progress{
		UserID:     m.UserID,
		TaskID:     m.TaskID,
		Answer:     m.Answer,
		AnswerHash: m.AnswerHash,
		Feedback:   m.Feedback,
		Completed:  m.Completed,
		Attempts:   m.Attempts,
		UpdatedAt:  m.UpdatedAt,
	}
}
