package model

type Patient struct {
	Base
	Name        string `db:"name" json:"name" validate:"notblank"`
	BirthDate   string `db:"birth_date" json:"birth_date" validate:"omitempty,ddmmyyyy"`
	Gender      string `db:"gender" json:"gender" validate:"max=16"`
	Phone       string `db:"phone" json:"phone" validate:"omitempty,phone10"`
	Address     string `db:"address" json:"address"`
	CreatedDate string `db:"created_date" json:"created_date"`
}

// PatientFilters narrows a patient listing. An empty SearchTerm lists all
// patients, newest first; otherwise matches are ordered by name.
type PatientFilters struct {
	SearchTerm string `json:"search_term"`
}
