// File: /models/review.go
package models

import (
	"time"
)

const (
	ReviewAuthorLen = 40
	ReviewTextLen   = 512
)

// Review keeps a copy of the van's name and uuid so it stays displayable
// after the van is deleted. VanName is rewritten whenever the van is renamed.
type Review struct {
	ID              uint      `json:"-" gorm:"primaryKey"`
	UUID            string    `json:"uuid" gorm:"uniqueIndex;not null;size:36"`
	Author          string    `json:"author" gorm:"not null;size:40"`
	Text            string    `json:"text" gorm:"not null;size:512"`
	Rate            int       `json:"rate" gorm:"not null;check:rate >= 1 AND rate <= 5"`
	PublicationDate Date      `json:"publication_date" gorm:"not null"`
	OwnerID         uint      `json:"-" gorm:"not null;index"`
	VanID           uint      `json:"-" gorm:"not null;index"`
	VanUUID         string    `json:"van_uuid" gorm:"not null;size:36"`
	VanName         string    `json:"van_name" gorm:"not null;size:60"`
	CreatedAt       time.Time `json:"-"`
}
