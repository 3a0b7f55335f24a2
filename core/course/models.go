package course

import (
	"time"

	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
)

// Area is the knowledge area a course belongs to.
type Area string

const (
	AreaHumanities         Area = "humanities"
	AreaExactSciences      Area = "exact_sciences"
	AreaBiologicalSciences Area = "biological_sciences"
)

var (
	ErrInvalidArea = errors.New("invalid area")

	// Areas lists every valid Area; handy for form rendering.
	Areas = []Area{AreaHumanities, AreaExactSciences, AreaBiologicalSciences}
)

// ParseArea parses s into an Area, ignoring case and surrounding whitespace.
func ParseArea(s string) (Area, error) {
	switch Area(core.CleanString(s, true /* lower */)) {
	case AreaHumanities:
		return AreaHumanities, nil
	case AreaExactSciences:
		return AreaExactSciences, nil
	case AreaBiologicalSciences:
		return AreaBiologicalSciences, nil
	}
	return "", ErrInvalidArea
}

type Course struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Area        Area       `json:"area" db:"area"`
	Shift       core.Shift `json:"shift" db:"shift"`
	TeacherID   int        `json:"teacher_id" db:"teacher_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Area        string `json:"area" validate:"required"`
	Shift       string `json:"shift" validate:"required"`
	TeacherID   int    `json:"teacher_id" validate:"required"`
}

func (nc *NewCourse) Validate() (Area, core.Shift, error) {
	nc.Name = core.CleanString(nc.Name)
	if err := core.Validate.Struct(nc); err != nil {
		return "", "", err
	}
	area, err := ParseArea(nc.Area)
	if err != nil {
		return "", "", core.NewValidationError(err, core.FieldError{Field: "area", Error: err.Error()})
	}
	shift, err := core.ParseShift(nc.Shift)
	if err != nil {
		return "", "", core.NewValidationError(err, core.FieldError{Field: "shift", Error: err.Error()})
	}
	return area, shift, nil
}

// UpdateCourse defines what information may be provided to modify an
// existing Course; zero values leave the original field untouched.
type UpdateCourse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Area        string `json:"area"`
	Shift       string `json:"shift"`
	TeacherID   int    `json:"teacher_id"`
}

func (uc *UpdateCourse) Validate(orig Course) (Area, core.Shift, error) {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.Description == "" {
		uc.Description = orig.Description
	}
	if uc.TeacherID == 0 {
		uc.TeacherID = orig.TeacherID
	}
	area := orig.Area
	if uc.Area != "" {
		var err error
		if area, err = ParseArea(uc.Area); err != nil {
			return "", "", core.NewValidationError(err, core.FieldError{Field: "area", Error: err.Error()})
		}
	}
	shift := orig.Shift
	if uc.Shift != "" {
		var err error
		if shift, err = core.ParseShift(uc.Shift); err != nil {
			return "", "", core.NewValidationError(err, core.FieldError{Field: "shift", Error: err.Error()})
		}
	}
	return area, shift, nil
}
