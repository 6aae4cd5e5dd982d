package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/metrics"
)

type Service struct {
	repo     repository.IntakeRepository
	outbox   repository.OutboxRepository
	validate *validator.Validate
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(repo repository.IntakeRepository, outbox repository.OutboxRepository, l *logger.Logger, m *metrics.Metrics) *Service {
	v := validator.New()

	// Report errors under the wire name, not the Go field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("intake_concern", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, c := range model.IntakeConcerns {
			if c == value {
				return true
			}
		}
		return false
	})

	return &Service{
		repo:     repo,
		outbox:   outbox,
		validate: v,
		logger:   l,
		metrics:  m,
	}
}

// Submit validates an intake request field by field and persists it. On any
// violation nothing is stored and the caller gets one message per offending
// field.
func (s *Service) Submit(ctx context.Context, req *model.IntakeRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CurrentFeelings = strings.TrimSpace(req.CurrentFeelings)
	req.AdditionalInfo = strings.TrimSpace(req.AdditionalInfo)

	if err := s.validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.BadRequest("invalid intake request", err)
		}

		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			name := fe.Field()
			// Collection elements report as "concerns[0]"; fold them
			// onto the parent field.
			if i := strings.IndexByte(name, '['); i > 0 {
				name = name[:i]
			}
			if _, seen := fields[name]; !seen {
				fields[name] = fieldMessage(fe)
			}
		}
		return errors.Validation(fields)
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return fmt.Errorf("failed to store intake request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IntakeSubmitted.Inc()
	}

	s.enqueueEvent(ctx, model.EventIntakeSubmitted, req)
	return nil
}

// List returns intake submissions for the care team, optionally by status
func (s *Service) List(ctx context.Context, status string) ([]*model.IntakeRequest, error) {
	requests, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus moves an intake request through its follow-up lifecycle
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case model.IntakeStatusSubmitted, model.IntakeStatusContacted, model.IntakeStatusClosed:
	default:
		return errors.BadRequest(fmt.Sprintf("invalid intake status %q", status), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return errors.NotFound("intake request", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("select at least %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "intake_concern":
		return "is not a recognized concern"
	default:
		return "is invalid"
	}
}

func (s *Service) enqueueEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.outbox == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}

	event := &model.OutboxEvent{EventType: eventType, Payload: data}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue outbox event", "event_type", eventType)
	}
}
