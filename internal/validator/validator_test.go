package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSignupRequest(t *testing.T) {
	v := New()

	valid := SignupRequest{
		FirstName: "Ida",
		LastName:  "Coach",
		Email:     "ida@example.com",
		Password:  "password123",
		Role:      "INSTRUCTOR",
	}

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(&valid))
	})

	tests := []struct {
		name      string
		mutate    func(r *SignupRequest)
		wantField string
	}{
		{"missing first name", func(r *SignupRequest) { r.FirstName = "" }, "first_name"},
		{"bad email", func(r *SignupRequest) { r.Email = "nope" }, "email"},
		{"short password", func(r *SignupRequest) { r.Password = "short" }, "password"},
		{"unknown role", func(r *SignupRequest) { r.Role = "ADMIN" }, "role"},
		{"short code", func(r *SignupRequest) { c := "AB1"; r.InstructorCode = &c }, "instructor_code"},
		{"code with symbols", func(r *SignupRequest) { c := "AB-12!"; r.InstructorCode = &c }, "instructor_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := v.ValidateStruct(&req)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.NotEmpty(t, verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field, "errors use json field names")
		})
	}
}

func TestValidateRoutineCreateRequest(t *testing.T) {
	v := New()

	t.Run("valid with segments", func(t *testing.T) {
		err := v.ValidateStruct(&RoutineCreateRequest{
			Name: "Intervals",
			Segments: []RoutineSegmentRequest{
				{Name: "Warmup", Duration: 10},
				{Duration: 20},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("valid without segments", func(t *testing.T) {
		err := v.ValidateStruct(&RoutineCreateRequest{Name: "Empty shell"})
		assert.NoError(t, err)
	})

	t.Run("missing name", func(t *testing.T) {
		err := v.ValidateStruct(&RoutineCreateRequest{})
		assert.Error(t, err)
	})

	t.Run("zero duration segment", func(t *testing.T) {
		err := v.ValidateStruct(&RoutineCreateRequest{
			Name:     "Bad",
			Segments: []RoutineSegmentRequest{{Duration: 0}},
		})
		assert.Error(t, err)
	})
}

func TestValidateCodeCheckRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"uppercase", "AB12CD", false},
		{"lowercase accepted, normalized later", "ab12cd", false},
		{"too short", "AB1", true},
		{"too long", "AB12CD9", true},
		{"symbols", "AB-2CD", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(&CodeCheckRequest{Code: tt.code})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
