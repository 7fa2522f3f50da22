package model

import "fmt"

type CatalogKind string

const (
	CatalogTestType CatalogKind = "test_type"
	CatalogMedicine CatalogKind = "medicine"
)

// CatalogKinds lists every reference catalog.
var CatalogKinds = []CatalogKind{CatalogTestType, CatalogMedicine}

func ParseCatalogKind(s string) (CatalogKind, error) {
	switch s {
	case "test_type", "test-type", "test":
		return CatalogTestType, nil
	case "medicine", "medicine_type", "medicine-type":
		return CatalogMedicine, nil
	}
	return "", fmt.Errorf("unknown catalog kind %q, want one of %v", s, CatalogKinds)
}

// CatalogEntry is one row of test_types or medicine_types.
type CatalogEntry struct {
	Base
	Kind        CatalogKind `db:"-" json:"kind"`
	Name        string      `db:"name" json:"name" validate:"notblank"`
	Description string      `db:"description" json:"description"`
}
