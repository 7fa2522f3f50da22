package model

// PendingLabResult is a lab result collected by the caller but not yet
// persisted.
type PendingLabResult struct {
	TestTypeID int64  `json:"test_type_id" validate:"gt=0"`
	Result     string `json:"result" validate:"notblank"`
	Notes      string `json:"notes"`
}

type TestResult struct {
	Base
	RecordID     int64  `db:"record_id" json:"record_id"`
	TestTypeID   int64  `db:"test_type_id" json:"test_type_id"`
	TestTypeName string `db:"test_type_name" json:"test_type_name"`
	Result       string `db:"result" json:"result"`
	TestDate     string `db:"test_date" json:"test_date"`
	Notes        string `db:"notes" json:"notes"`
}

// PendingPrescription is a prescription collected by the caller but not
// yet persisted. Quantity is kept as entered and parsed on save.
type PendingPrescription struct {
	MedicineID   int64  `json:"medicine_id" validate:"gt=0"`
	Dosage       string `json:"dosage" validate:"notblank"`
	Quantity     string `json:"quantity" validate:"required,posint"`
	Instructions string `json:"instructions"`
}

type Prescription struct {
	Base
	RecordID     int64  `db:"record_id" json:"record_id"`
	MedicineID   int64  `db:"medicine_id" json:"medicine_id"`
	MedicineName string `db:"medicine_name" json:"medicine_name"`
	Dosage       string `db:"dosage" json:"dosage"`
	Quantity     int    `db:"quantity" json:"quantity"`
	Instructions string `db:"instructions" json:"instructions"`
}
