package classgroup

import (
	"time"

	"github.com/dmorais/escolar/core"
)

// ClassGroup is a cohort of students ("turma") that attends sessions together.
type ClassGroup struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Shift       core.Shift `json:"shift" db:"shift"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

// NewClassGroup contains information needed to create a new ClassGroup.
type NewClassGroup struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Shift       string `json:"shift" validate:"required"`
}

func (ncg *NewClassGroup) Validate() (core.Shift, error) {
	ncg.Name = core.CleanString(ncg.Name)
	if err := core.Validate.Struct(ncg); err != nil {
		return "", err
	}
	shift, err := core.ParseShift(ncg.Shift)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "shift", Error: err.Error()})
	}
	return shift, nil
}

// UpdateClassGroup defines what information may be provided to modify an
// existing ClassGroup; zero values leave the original field untouched.
type UpdateClassGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Shift       string `json:"shift"`
}

func (ucg *UpdateClassGroup) Validate(orig ClassGroup) (core.Shift, error) {
	if name := core.CleanString(ucg.Name); name != "" {
		ucg.Name = name
	} else {
		ucg.Name = orig.Name
	}
	if ucg.Description == "" {
		ucg.Description = orig.Description
	}
	if ucg.Shift == "" {
		return orig.Shift, nil
	}
	shift, err := core.ParseShift(ucg.Shift)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "shift", Error: err.Error()})
	}
	return shift, nil
}
