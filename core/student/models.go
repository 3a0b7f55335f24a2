package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dmorais/escolar/core"
)

type Student struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	BirthDate    null.Time `json:"birth_date" db:"birth_date"`
	NationalID   string    `json:"national_id" db:"national_id"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	EnrolledOn   time.Time `json:"enrolled_on" db:"enrolled_on"`
	CompletedOn  null.Time `json:"completed_on" db:"completed_on"`
	Notes        string    `json:"notes" db:"notes"`
	ClassGroupID null.Int  `json:"class_group_id" db:"class_group_id"`
	GenderID     null.Int  `json:"gender_id" db:"gender_id"`
	RaceID       null.Int  `json:"race_id" db:"race_id"`
	DisabilityID null.Int  `json:"disability_id" db:"disability_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Active reports whether the student is still attending, ie. has not
// completed the program yet.
func (s Student) Active() bool { return !s.CompletedOn.Valid }

// NewStudent contains information needed to register a new Student.
// EnrolledOn defaults to today when omitted.
type NewStudent struct {
	Name         string    `json:"name" validate:"required"`
	BirthDate    null.Time `json:"birth_date"`
	NationalID   string    `json:"national_id" validate:"omitempty,len=11,numeric"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone" validate:"omitempty,max=11"`
	Address      string    `json:"address"`
	EnrolledOn   time.Time `json:"enrolled_on"`
	Notes        string    `json:"notes"`
	ClassGroupID null.Int  `json:"class_group_id"`
	GenderID     null.Int  `json:"gender_id"`
	RaceID       null.Int  `json:"race_id"`
	DisabilityID null.Int  `json:"disability_id"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.NationalID = core.CleanString(ns.NationalID)
	if ns.EnrolledOn.IsZero() {
		ns.EnrolledOn = core.Today()
	}
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student; zero values leave the original field untouched.
// CompletedOn is settable here to mark a student as graduated.
type UpdateStudent struct {
	Name         string    `json:"name"`
	BirthDate    null.Time `json:"birth_date"`
	NationalID   string    `json:"national_id" validate:"omitempty,len=11,numeric"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone" validate:"omitempty,max=11"`
	Address      string    `json:"address"`
	EnrolledOn   time.Time `json:"enrolled_on"`
	CompletedOn  null.Time `json:"completed_on"`
	Notes        string    `json:"notes"`
	ClassGroupID null.Int  `json:"class_group_id"`
	GenderID     null.Int  `json:"gender_id"`
	RaceID       null.Int  `json:"race_id"`
	DisabilityID null.Int  `json:"disability_id"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	if nid := core.CleanString(us.NationalID); nid != "" {
		us.NationalID = nid
	} else {
		us.NationalID = orig.NationalID
	}
	if !us.BirthDate.Valid {
		us.BirthDate = orig.BirthDate
	}
	if us.Phone == "" {
		us.Phone = orig.Phone
	}
	if us.Address == "" {
		us.Address = orig.Address
	}
	if us.EnrolledOn.IsZero() {
		us.EnrolledOn = orig.EnrolledOn
	}
	if !us.CompletedOn.Valid {
		us.CompletedOn = orig.CompletedOn
	}
	if us.Notes == "" {
		us.Notes = orig.Notes
	}
	if !us.ClassGroupID.Valid {
		us.ClassGroupID = orig.ClassGroupID
	}
	if !us.GenderID.Valid {
		us.GenderID = orig.GenderID
	}
	if !us.RaceID.Valid {
		us.RaceID = orig.RaceID
	}
	if !us.DisabilityID.Valid {
		us.DisabilityID = orig.DisabilityID
	}
	return core.Validate.Struct(us)
}
