package model

type Doctor struct {
	Base
	FullName     string `db:"full_name" json:"full_name"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"`
	CreatedDate  string `db:"created_date" json:"created_date"`
}

type RegisterDoctorRequest struct {
	FullName string `json:"full_name" validate:"notblank"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}
