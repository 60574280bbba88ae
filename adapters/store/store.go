package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

// Store keeps profiles, the methods catalogue and practicum progress.
type Store struct {
	db *gorm.DB
}

var (
	_ domain.ProfileStore  = (*Store)(nil)
	_ domain.MethodStore   = (*Store)(nil)
	_ domain.ProgressStore = (*Store)(nil)
)

// Open connects with the named driver ("postgres" or "sqlite") and migrates
// the schema.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying database connection: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.With(zap.String("driver", driver)).Info("database ready")
	return s, nil
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(&ProfileModel{}, &MethodModel{}, &ProgressModel{})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying database connection: %w", err)
	}
	return sqlDB.Close()
}

// --- ProfileStore ---

func (s *Store) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var m ProfileModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return m.ToDomain(), nil
}

// UpsertProfile creates the profile or updates its editable fields, then
// refreshes p with the stored row.
func (s *Store) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	m := ToProfileModel(p)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "role", "avatar_url", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	stored, err := s.GetProfile(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// --- MethodStore ---

// ListActiveMethods returns active methods, oldest first.
func (s *Store) ListActiveMethods(ctx context.Context) ([]domain.Method, error) {
	var models []MethodModel
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list methods: %w", err)
	}

	methods := make([]domain.Method, len(models))
	for i := range models {
		methods[i] = models[i].ToDomain()
	}
	return methods, nil
}

func (s *Store) CreateMethod(ctx context.Context, d *domain.Method) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	m := ToMethodModel(d)
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create method: %w", err)
	}
	d.CreatedAt = m.CreatedAt
	d.UpdatedAt = m.UpdatedAt
	return nil
}

// --- ProgressStore ---

// UpsertProgress stores p as the latest attempt for (UserID, TaskID) and
// counts it. Once a task is completed it stays completed and keeps the
// answer that passed. p is refreshed with the stored row.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.Progress) error {
	m := ProgressModel{
		ID:         uuid.NewString(),
		UserID:     p.UserID,
		TaskID:     p.TaskID,
		Answer:     p.Answer,
		AnswerHash: p.AnswerHash,
		Feedback:   p.Feedback,
		Completed:  p.Completed,
		Attempts:   1,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "answer"}, Value: keepWhenCompleted("answer")},
			{Column: clause.Column{Name: "answer_hash"}, Value: keepWhenCompleted("answer_hash")},
			{Column: clause.Column{Name: "feedback"}, Value: keepWhenCompleted("feedback")},
			{Column: clause.Column{Name: "completed"}, Value: gorm.Expr("user_progress.completed OR excluded.completed")},
			{Column: clause.Column{Name: "attempts"}, Value: gorm.Expr("user_progress.attempts + 1")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	var stored ProgressModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", p.UserID, p.TaskID).
		First(&stored).Error; err != nil {
		return fmt.Errorf("failed to find progress: %w", err)
	}
	*p = stored.ToDomain()
	return nil
}

func keepWhenCompleted(column string) clause.Expr {
	return gorm.Expr(fmt.Sprintf(
		"CASE WHEN user_progress.completed THEN user_progress.%[1]s ELSE excluded.%[1]s END", column))
}

func (s *Store) ListProgress(ctx context.Context, userID string) ([]domain.Progress, error) {
	var models []ProgressModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("task_id asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	progress := make([]domain.Progress, len(models))
	for i := range models {
		progress[i] = models[i].ToDomain()
	}
	return progress, nil
}
