package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/models"
)

const maxTaskAttempts = 5

// TaskRepository owns the action-plan side-effect queue and the plans the
// worker patches.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Enqueue(task *models.ActionPlanTask) error {
	task.Status = models.TaskPending
	return r.db.Create(task).Error
}

// NextPending returns retryable pending tasks, oldest first.
func (r *TaskRepository) NextPending(limit int) ([]models.ActionPlanTask, error) {
	var tasks []models.ActionPlanTask
	err := r.db.Where("status = ? AND attempts < ?", models.TaskPending, maxTaskAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) MarkDone(task *models.ActionPlanTask) error {
	task.Status = models.TaskDone
	return r.db.Save(task).Error
}

// RecordFailure bumps the attempt counter and parks the task as failed once
// the attempt limit is reached.
func (r *TaskRepository) RecordFailure(task *models.ActionPlanTask, cause error) error {
	task.Attempts++
	task.LastError = cause.Error()
	if task.Attempts >= maxTaskAttempts {
		task.Status = models.TaskFailed
	}
	return r.db.Save(task).Error
}

func (r *TaskRepository) GetPlan(userID, planID string) (*models.ActionPlan, error) {
	var plan models.ActionPlan
	err := r.db.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load action plan: %w", err)
	}
	return &plan, nil
}

func (r *TaskRepository) SavePlan(plan *models.ActionPlan) error {
	return r.db.Save(plan).Error
}
