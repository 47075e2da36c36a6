// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model carries a ToDomain and
// FromDomain mapper used by the repositories in the parent package.
package models
