package model

// VisitFields are the scalar columns of a visit that callers may set.
type VisitFields struct {
	VisitDate  string `db:"visit_date" json:"visit_date" validate:"required,ddmmyyyy"`
	Diagnosis  string `db:"diagnosis" json:"diagnosis" validate:"notblank"`
	Symptoms   string `db:"symptoms" json:"symptoms"`
	Treatment  string `db:"treatment" json:"treatment"`
	Notes      string `db:"notes" json:"notes"`
	DoctorName string `db:"doctor_name" json:"doctor_name"`
}

// MedicalRecord is one visit row.
type MedicalRecord struct {
	Base
	PatientID int64 `db:"patient_id" json:"patient_id"`
	VisitFields
	CreatedDate string `db:"created_date" json:"created_date"`
}

// VisitDetail is a visit together with its line items.
type VisitDetail struct {
	Record        MedicalRecord  `json:"record"`
	PatientName   string         `json:"patient_name"`
	LabResults    []TestResult   `json:"lab_results"`
	Prescriptions []Prescription `json:"prescriptions"`
}

// SaveResult reports what a visit save persisted.
type SaveResult struct {
	VisitID       int64 `json:"visit_id"`
	LabResults    int   `json:"lab_results"`
	Prescriptions int   `json:"prescriptions"`
}
