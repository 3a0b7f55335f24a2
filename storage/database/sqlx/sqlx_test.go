package sqlxrepos

import (
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
)

func Test_trapConflictErr(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantConstraint string
	}{
		{
			name:           "unique violation",
			err:            &pq.Error{Code: pqUniqueViolation, Constraint: "course_name_key"},
			wantConstraint: "course_name_key",
		},
		{
			name:           "wrapped unique violation",
			err:            errors.Wrap(&pq.Error{Code: pqUniqueViolation, Constraint: "student_email_key"}, "inserting student"),
			wantConstraint: "student_email_key",
		},
		{
			name:           "fk violation",
			err:            &pq.Error{Code: pqFKViolation, Constraint: "session_class_group_id_fkey"},
			wantConstraint: "session_class_group_id_fkey",
		},
		{
			name: "other pq error",
			err:  &pq.Error{Code: pq.ErrorCode("42P01")}, // undefined table
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := trapConflictErr(tt.err, "boom")
			conflictErr, ok := errors.Cause(err).(*core.ConflictError)
			if tt.wantConstraint == "" {
				if ok {
					t.Errorf("trapConflictErr() = %v; want non-conflict error", err)
				}
				return
			}
			if !ok {
				t.Fatalf("trapConflictErr() = %v; want *core.ConflictError", err)
			}
			if conflictErr.Constraint != tt.wantConstraint {
				t.Errorf("constraint = %q; want %q", conflictErr.Constraint, tt.wantConstraint)
			}
		})
	}
}
