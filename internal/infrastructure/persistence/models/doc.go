// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: AggregateModel shared by every root
// - product.go: products table
// - tab.go: tabs and tab_items tables
package models
