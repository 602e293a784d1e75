package validation

import (
	"errors"
	"testing"

	"drivequest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
	}{
		{name: "valid student", input: domain.NewStudent{Name: "Aarin", Age: "17", State: "Georgia"}},
		{name: "missing name", input: domain.NewStudent{Age: "17", State: "Georgia"}, wantField: "name"},
		{name: "missing state", input: domain.NewStudent{Name: "Aarin", Age: "17"}, wantField: "state"},
		{name: "zero goal target", input: domain.NewGoal{Title: "Mirror Checks"}, wantField: "target"},
		{
			name: "breakdown out of range",
			input: domain.NewDrive{
				Date:      "Today, 3:45 PM",
				Score:     80,
				Breakdown: &domain.PerformanceBreakdown{Control: 90, Speed: 120},
			},
			wantField: "breakdown.speed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestAllReportsEveryField(t *testing.T) {
	errs := All(domain.NewStudent{})
	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
}
