package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Elmamis69/jatrack/internal/domain"
	"github.com/Elmamis69/jatrack/internal/repository"
)

// ApplicationService exposes caller-scoped CRUD and search over
// application records. The caller identity arrives as an explicit
// argument on every operation; there is no ambient principal lookup.
type ApplicationService struct {
	apps      repository.ApplicationRepository
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewApplicationService wires dependencies.
func NewApplicationService(apps repository.ApplicationRepository, node *snowflake.Node, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		apps:      apps,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/Elmamis69/jatrack/internal/service"),
	}
}

// Create stores a new application owned by the caller. Any owner or id
// carried by the draft is discarded.
func (s *ApplicationService) Create(ctx context.Context, callerID int64, draft domain.Application) (domain.Application, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.Create")
	defer span.End()

	if err := validateDraft(draft); err != nil {
		return domain.Application{}, err
	}

	draft.ID = s.snowflake.Generate().Int64()
	draft.UserID = callerID

	created, err := s.apps.Create(ctx, draft)
	if err != nil {
		span.RecordError(err)
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}

	s.audit("application.created", "user_id", callerID, "application_id", created.ID)
	return created, nil
}

// Get returns the caller's record or ErrNotFound. A record owned by
// another user reports the same ErrNotFound as a missing one.
func (s *ApplicationService) Get(ctx context.Context, callerID, id int64) (domain.Application, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.Get")
	defer span.End()

	app, err := s.apps.GetByIDAndOwner(ctx, id, callerID)
	if err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

// Update replaces the mutable fields of the caller's record. The id
// and owner are taken from the route and the caller, never the patch.
func (s *ApplicationService) Update(ctx context.Context, callerID, id int64, patch domain.Application) (domain.Application, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.Update")
	defer span.End()

	if err := validateDraft(patch); err != nil {
		return domain.Application{}, err
	}

	patch.ID = id
	patch.UserID = callerID

	updated, err := s.apps.Update(ctx, patch)
	if err != nil {
		return domain.Application{}, err
	}

	s.audit("application.updated", "user_id", callerID, "application_id", id)
	return updated, nil
}

// Delete removes the caller's record. Deleting an already-gone id
// reports ErrNotFound rather than failing.
func (s *ApplicationService) Delete(ctx context.Context, callerID, id int64) error {
	ctx, span := s.startSpan(ctx, "ApplicationService.Delete")
	defer span.End()

	if err := s.apps.Delete(ctx, id, callerID); err != nil {
		return err
	}

	s.audit("application.deleted", "user_id", callerID, "application_id", id)
	return nil
}

// Search returns one page of the caller's applications under the
// optional status and text filters.
func (s *ApplicationService) Search(ctx context.Context, callerID int64, filter domain.SearchFilter, page domain.PageRequest) (domain.Page, error) {
	ctx, span := s.startSpan(ctx, "ApplicationService.Search")
	defer span.End()

	result, err := s.apps.Search(ctx, callerID, filter, page)
	if err != nil {
		span.RecordError(err)
		return domain.Page{}, err
	}
	return result, nil
}

func validateDraft(app domain.Application) error {
	if strings.TrimSpace(app.Company) == "" {
		return domain.NewValidationError("company", "company is required")
	}
	if strings.TrimSpace(app.RoleTitle) == "" {
		return domain.NewValidationError("roleTitle", "roleTitle is required")
	}
	if app.Status == "" {
		return domain.NewValidationError("status", "status is required")
	}
	if _, err := domain.ParseStatus(string(app.Status)); err != nil {
		return err
	}
	return nil
}

func (s *ApplicationService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *ApplicationService) audit(event string, attrs ...any) {
	logger := s.logger
	if logger == nil {
		logger = zap.L()
	}
	fields := make([]zap.Field, 0, len(attrs)/2+1)
	fields = append(fields, zap.String("event", event))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}
