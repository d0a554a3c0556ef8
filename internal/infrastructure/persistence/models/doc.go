// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model carries a FromDomain
// constructor and a ToDomain mapper used by the repositories.
//
//   - base.go: BaseModel, AggregateModel, FirmAggregateModel, JSON column helpers
//   - identity.go: firms and users
//   - intake.go: intake forms, clients, submissions, documents
package models
