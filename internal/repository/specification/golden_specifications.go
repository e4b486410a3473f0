package specification

import (
	"time"

	"gorm.io/gorm"
)

// ActiveOnly keeps answers the curators have not retired.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

type ByTopic struct {
	Topic string
}

func (s ByTopic) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("topic = ?", s.Topic)
}

// EffectiveAfter filters rows whose regulation text took effect after a
// point in time.
type EffectiveAfter struct {
	Since time.Time
}

func (s EffectiveAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("effective_at > ?", s.Since)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

type ByRoute struct {
	Route string
}

func (s ByRoute) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("route = ?", s.Route)
}

// BySource matches a document's citation label, e.g. "ET art. 34".
type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}
