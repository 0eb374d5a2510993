package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/hackathon/internal/app/auth"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
)

// reviewWorkflow implements status changes, starring, deletion and their bulk
// variants for one application kind. Any status may follow any other.
type reviewWorkflow[T reviewable] struct {
	store    reviewStore[T]
	notifier Notifier
	now      func() time.Time
	logger   zerolog.Logger
	// changed runs after every successful status change or delete
	changed func(ctx context.Context)
	// removed receives each deleted record
	removed func(ctx context.Context, item T)
}

// SetStatus persists the new status with reviewer attribution, then dispatches
// the decision email for ACCEPTED or REJECTED. Dispatch never affects the result.
func (w *reviewWorkflow[T]) SetStatus(ctx context.Context, caller *models.Caller, id uuid.UUID, status models.ApplicationStatus) (*dto.StatusResult, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	return w.setStatus(ctx, caller.UserID, id, status)
}

func (w *reviewWorkflow[T]) setStatus(ctx context.Context, reviewerID int64, id uuid.UUID, status models.ApplicationStatus) (*dto.StatusResult, error) {
	updated, err := w.store.UpdateStatus(ctx, id, status, reviewerID, w.now())
	if err != nil {
		return nil, err
	}

	newStatus, reviewedAt := updated.ReviewState()
	result := &dto.StatusResult{Status: newStatus}
	if reviewedAt != nil {
		result.ReviewedAt = *reviewedAt
	}

	w.logger.Info().
		Str("applicationId", id.String()).
		Str("status", string(newStatus)).
		Int64("reviewerId", reviewerID).
		Msg("Application status changed")

	w.notifyChange(ctx)

	if decision, ok := models.DecisionFor(newStatus); ok && w.notifier != nil {
		w.notifier.Dispatch(ctx, updated.NotificationTarget(), decision)
	}

	return result, nil
}

// ToggleStar flips the starred flag. Status is untouched.
func (w *reviewWorkflow[T]) ToggleStar(ctx context.Context, caller *models.Caller, id uuid.UUID) (*dto.StarResult, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	starred, err := w.store.ToggleStar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StarResult{Starred: starred}, nil
}

// Delete hard-deletes one application
func (w *reviewWorkflow[T]) Delete(ctx context.Context, caller *models.Caller, id uuid.UUID) error {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return err
	}
	return w.delete(ctx, id)
}

func (w *reviewWorkflow[T]) delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := w.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	w.logger.Info().Str("applicationId", id.String()).Msg("Application deleted")
	w.notifyChange(ctx)
	if w.removed != nil {
		w.removed(ctx, deleted)
	}
	return nil
}

// BulkSetStatus applies status to every id independently. A failing id does
// not stop or roll back the others; failures are reported per id.
func (w *reviewWorkflow[T]) BulkSetStatus(ctx context.Context, caller *models.Caller, ids []uuid.UUID, status models.ApplicationStatus) (*dto.BulkResult, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	return w.bulk(ctx, ids, func(id uuid.UUID) error {
		_, err := w.setStatus(ctx, caller.UserID, id, status)
		return err
	}), nil
}

// BulkDelete deletes every id independently
func (w *reviewWorkflow[T]) BulkDelete(ctx context.Context, caller *models.Caller, ids []uuid.UUID) (*dto.BulkResult, error) {
	if err := appauth.RequireAdministrator(caller); err != nil {
		return nil, err
	}

	return w.bulk(ctx, ids, func(id uuid.UUID) error {
		return w.delete(ctx, id)
	}), nil
}

func (w *reviewWorkflow[T]) bulk(ctx context.Context, ids []uuid.UUID, op func(uuid.UUID) error) *dto.BulkResult {
	result := &dto.BulkResult{
		Succeeded: make([]uuid.UUID, 0, len(ids)),
		Failed:    make([]dto.BulkFailure, 0),
	}

	for _, id := range dedupeIDs(ids) {
		if err := op(id); err != nil {
			w.logger.Warn().Err(err).Str("applicationId", id.String()).Msg("Bulk operation failed for application")
			result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Error: publicMessage(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

func (w *reviewWorkflow[T]) notifyChange(ctx context.Context) {
	if w.changed != nil {
		w.changed(ctx)
	}
}

// dedupeIDs drops repeated ids, keeping the first occurrence
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validateStatus(status models.ApplicationStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError().Add("status", "status must be one of: PENDING ACCEPTED REJECTED")
	}
	return nil
}

// publicMessage hides internal causes from bulk reports
func publicMessage(err error) string {
	var custom *apperrors.CustomError
	switch {
	case errors.As(err, &custom) && !errors.Is(err, apperrors.ErrDatabase):
		return custom.Error()
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return apperrors.ErrResourceNotFound.Error()
	default:
		return "internal error"
	}
}
