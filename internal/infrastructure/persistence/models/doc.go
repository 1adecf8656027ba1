// Package models contains the GORM persistence models and their mapping to
// the notification domain.
package models
