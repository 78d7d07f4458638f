package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brandbeam/brandbeam/internal/models"
	"github.com/brandbeam/brandbeam/internal/repository"
)

const taskBatchSize = 50

// ActionPlanWorker drains the action_plan_tasks queue: each task marks one
// plan step completed with the publish URL. The queue decouples this from
// the publish request, so a step update failure is retried here instead of
// surfacing to the caller.
type ActionPlanWorker struct {
	tasks    *repository.TaskRepository
	logger   *zap.Logger
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
}

func NewActionPlanWorker(tasks *repository.TaskRepository, logger *zap.Logger, interval time.Duration) *ActionPlanWorker {
	return &ActionPlanWorker{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (w *ActionPlanWorker) Start(ctx context.Context) {
	w.ticker = time.NewTicker(w.interval)
	go func() {
		w.logger.Info("Starting action plan worker", zap.Duration("interval", w.interval))
		for {
			select {
			case <-w.ticker.C:
				w.drain()
			case <-w.stopCh:
				w.logger.Info("Action plan worker stopped")
				return
			case <-ctx.Done():
				w.logger.Info("Action plan worker context cancelled")
				return
			}
		}
	}()
}

func (w *ActionPlanWorker) Stop() {
	if w.ticker != nil {
		w.ticker.Stop()
	}
	close(w.stopCh)
}

func (w *ActionPlanWorker) drain() {
	tasks, err := w.tasks.NextPending(taskBatchSize)
	if err != nil {
		w.logger.Error("Failed to fetch pending tasks", zap.Error(err))
		return
	}

	for i := range tasks {
		task := &tasks[i]
		if err := w.apply(task); err != nil {
			w.logger.Warn("Action plan step update failed",
				zap.Uint("task_id", task.ID),
				zap.String("plan_id", task.PlanID),
				zap.Int("attempts", task.Attempts+1),
				zap.Error(err))
			if rerr := w.tasks.RecordFailure(task, err); rerr != nil {
				w.logger.Error("Failed to record task failure", zap.Error(rerr))
			}
			continue
		}
		if err := w.tasks.MarkDone(task); err != nil {
			w.logger.Error("Failed to mark task done", zap.Uint("task_id", task.ID), zap.Error(err))
		}
	}
}

// apply marks the linked step completed and stamps it with the publish URL.
func (w *ActionPlanWorker) apply(task *models.ActionPlanTask) error {
	plan, err := w.tasks.GetPlan(task.UserID, task.PlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("action plan %s not found", task.PlanID)
	}

	found := false
	now := time.Now().UTC()
	steps := []models.ActionPlanStep(plan.Steps)
	for i := range steps {
		if steps[i].ID != task.StepID {
			continue
		}
		steps[i].Completed = true
		steps[i].PublishedURL = task.PublishedURL
		steps[i].CompletedAt = &now
		found = true
		break
	}
	if !found {
		return fmt.Errorf("step %s not found in plan %s", task.StepID, task.PlanID)
	}

	plan.Steps = steps
	if err := w.tasks.SavePlan(plan); err != nil {
		return fmt.Errorf("failed to save action plan: %w", err)
	}

	w.logger.Info("Action plan step completed",
		zap.String("plan_id", task.PlanID),
		zap.String("step_id", task.StepID))
	return nil
}
