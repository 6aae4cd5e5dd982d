package intake

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
)

type fakeIntakeRepo struct {
	created []*model.IntakeRequest
}

func (f *fakeIntakeRepo) Create(ctx context.Context, req *model.IntakeRequest) error {
	f.created = append(f.created, req)
	return nil
}

func (f *fakeIntakeRepo) List(ctx context.Context, status string) ([]*model.IntakeRequest, error) {
	return f.created, nil
}

func (f *fakeIntakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func validIntake() *model.IntakeRequest {
	return &model.IntakeRequest{
		FullName:        "Jordan Smith",
		Email:           "jordan@example.com",
		Phone:           "0412345678",
		AgeBracket:      "25-34",
		Gender:          "prefer-not-to-say",
		TherapyType:     model.TherapyTypeIndividual,
		Concerns:        []string{"anxiety", "stress"},
		CurrentFeelings: "I have been feeling overwhelmed at work for months.",
		PreviousTherapy: "no",
		PreferredTime:   "evenings",
		Consent:         true,
	}
}

func TestSubmitValidRequest(t *testing.T) {
	repo := &fakeIntakeRepo{}
	svc := NewService(repo, nil, logger.NewTestLogger(), nil)

	err := svc.Submit(context.Background(), validIntake())

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestSubmitMissingFieldsReportsEachField(t *testing.T) {
	repo := &fakeIntakeRepo{}
	svc := NewService(repo, nil, logger.NewTestLogger(), nil)

	req := validIntake()
	req.FullName = ""
	req.Email = ""
	req.Consent = false

	err := svc.Submit(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 3)
	assert.Contains(t, appErr.Fields, "full_name")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "consent")
	assert.Empty(t, repo.created, "invalid submission must not be persisted")
}

func TestSubmitRejectsUnknownConcern(t *testing.T) {
	repo := &fakeIntakeRepo{}
	svc := NewService(repo, nil, logger.NewTestLogger(), nil)

	req := validIntake()
	req.Concerns = []string{"anxiety", "astrology"}

	err := svc.Submit(context.Background(), req)

	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "concerns")
	assert.Empty(t, repo.created)
}

func TestSubmitValidationBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.IntakeRequest)
		field  string
	}{
		{
			name:   "short name",
			mutate: func(r *model.IntakeRequest) { r.FullName = "J" },
			field:  "full_name",
		},
		{
			name:   "bad email",
			mutate: func(r *model.IntakeRequest) { r.Email = "not-an-email" },
			field:  "email",
		},
		{
			name:   "short phone",
			mutate: func(r *model.IntakeRequest) { r.Phone = "12345" },
			field:  "phone",
		},
		{
			name:   "unknown therapy type",
			mutate: func(r *model.IntakeRequest) { r.TherapyType = "hypnosis" },
			field:  "therapy_type",
		},
		{
			name:   "no concerns",
			mutate: func(r *model.IntakeRequest) { r.Concerns = nil },
			field:  "concerns",
		},
		{
			name:   "feelings too short",
			mutate: func(r *model.IntakeRequest) { r.CurrentFeelings = "sad" },
			field:  "current_feelings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeIntakeRepo{}
			svc := NewService(repo, nil, logger.NewTestLogger(), nil)

			req := validIntake()
			tt.mutate(req)

			err := svc.Submit(context.Background(), req)

			require.Error(t, err)
			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Contains(t, appErr.Fields, tt.field)
			assert.Empty(t, repo.created)
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewService(&fakeIntakeRepo{}, nil, logger.NewTestLogger(), nil)

	err := svc.UpdateStatus(context.Background(), uuid.New(), "archived")

	require.Error(t, err)
}
