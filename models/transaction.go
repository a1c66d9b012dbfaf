// File: /models/transaction.go
package models

import (
	"time"
)

const (
	LesseeNameLen    = 40
	LesseeSurnameLen = 40
	LesseeEmailLen   = 40
)

// Transaction is a booking of a van by a lessee. It is never modified after creation.
type Transaction struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	UUID             string    `json:"uuid" gorm:"uniqueIndex;not null;size:36"`
	LesseeName       string    `json:"lessee_name" gorm:"not null;size:40"`
	LesseeSurname    string    `json:"lessee_surname" gorm:"not null;size:40"`
	LesseeEmail      string    `json:"lessee_email" gorm:"not null;size:40"`
	Price            int       `json:"price" gorm:"not null;check:price > 0"`
	TransactionDate  Date      `json:"transaction_date" gorm:"not null"`
	RentCommencement Date      `json:"rent_commencement" gorm:"not null"`
	RentExpiration   Date      `json:"rent_expiration" gorm:"not null"`
	LessorID         uint      `json:"-" gorm:"not null;index"`
	VanID            uint      `json:"-" gorm:"not null;index"` // dangles once the van is deleted
	VanUUID          string    `json:"van_uuid" gorm:"not null;size:36"`
	CreatedAt        time.Time `json:"-"`
}
