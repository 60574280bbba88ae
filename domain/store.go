package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

type AccountRole string

const (
	RoleStudent AccountRole = "student"
	RoleAdmin   AccountRole = "admin"
)

type Profile struct {
	ID        string      `json:"id"`
	FullName  string      `json:"full_name"`
	Role      AccountRole `json:"role"`
	AvatarURL string      `json:"avatar_url"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Method is one entry of the methods catalogue.
type Method struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Level       string    `json:"level"`
	Direction   string    `json:"direction"`
	FileURL     string    `json:"file_url"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	IconName    string    `json:"icon_name"`
	Format      string    `json:"format"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Progress is a user's state on one practicum task.
type Progress struct {
	UserID     string    `json:"user_id"`
	TaskID     string    `json:"task_id"`
	Answer     string    `json:"answer"`
	AnswerHash string    `json:"answer_hash"`
	Feedback   string    `json:"feedback"`
	Completed  bool      `json:"completed"`
	Attempts   int       `json:"attempts"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
}

type MethodStore interface {
	ListActiveMethods(ctx context.Context) ([]Method, error)
	CreateMethod(ctx context.Context, m *Method) error
}

type ProgressStore interface {
	// UpsertProgress inserts or replaces the row for (UserID, TaskID) and
	// increments its attempt counter.
	UpsertProgress(ctx context.Context, p *Progress) error
	ListProgress(ctx context.Context, userID string) ([]Progress, error)
}
