package teacher

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dmorais/escolar/core"
)

// Teacher is an instructor on record; courses reference their owning Teacher.
type Teacher struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	NationalID   string    `json:"national_id" db:"national_id"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	GenderID     null.Int  `json:"gender_id" db:"gender_id"`
	RaceID       null.Int  `json:"race_id" db:"race_id"`
	DisabilityID null.Int  `json:"disability_id" db:"disability_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Name         string   `json:"name" validate:"required"`
	NationalID   string   `json:"national_id" validate:"omitempty,len=11,numeric"`
	Email        string   `json:"email" validate:"required,email"`
	Phone        string   `json:"phone" validate:"omitempty,max=11"`
	Address      string   `json:"address"`
	GenderID     null.Int `json:"gender_id"`
	RaceID       null.Int `json:"race_id"`
	DisabilityID null.Int `json:"disability_id"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.NationalID = core.CleanString(nt.NationalID)
	return core.Validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an
// existing Teacher; zero values leave the original field untouched.
type UpdateTeacher struct {
	Name         string   `json:"name"`
	NationalID   string   `json:"national_id" validate:"omitempty,len=11,numeric"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone" validate:"omitempty,max=11"`
	Address      string   `json:"address"`
	GenderID     null.Int `json:"gender_id"`
	RaceID       null.Int `json:"race_id"`
	DisabilityID null.Int `json:"disability_id"`
}

func (ut *UpdateTeacher) Validate(orig Teacher) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = orig.Email
	}
	if nid := core.CleanString(ut.NationalID); nid != "" {
		ut.NationalID = nid
	} else {
		ut.NationalID = orig.NationalID
	}
	if ut.Phone == "" {
		ut.Phone = orig.Phone
	}
	if ut.Address == "" {
		ut.Address = orig.Address
	}
	if !ut.GenderID.Valid {
		ut.GenderID = orig.GenderID
	}
	if !ut.RaceID.Valid {
		ut.RaceID = orig.RaceID
	}
	if !ut.DisabilityID.Valid {
		ut.DisabilityID = orig.DisabilityID
	}
	return core.Validate.Struct(ut)
}
