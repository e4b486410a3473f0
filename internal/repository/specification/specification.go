package specification

import "gorm.io/gorm"

// Specification is a composable query predicate. Repositories accept a list
// of them and apply each in turn, which keeps filter logic in one place and
// SQL strings out of services.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
