package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Statement is one row of an LDTab statement table. The object column holds
// either a bare identifier (datatype _IRI) or a serialized structured literal
// (datatype _JSON); annotation carries OWL axiom annotations when present.
type Statement struct {
	Assertion  int            `gorm:"column:assertion;not null;default:1"`
	Retraction int            `gorm:"column:retraction;not null;default:0"`
	Graph      string         `gorm:"column:graph;type:text;not null"`
	Subject    string         `gorm:"column:subject;type:text;not null;index"`
	Predicate  string         `gorm:"column:predicate;type:text;not null;index"`
	Object     string         `gorm:"column:object;type:text;not null;index"`
	Datatype   string         `gorm:"column:datatype;type:text;not null"`
	Annotation datatypes.JSON `gorm:"column:annotation"`
}

// TableName keeps the LDTab convention: the default statement table is
// called "statement".
func (Statement) TableName() string { return "statement" }

// Migrate creates the statement table if it does not exist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Statement{})
}
