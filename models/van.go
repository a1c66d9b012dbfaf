// File: /models/van.go
package models

import (
	"time"
)

type VanType string

const (
	VanTypeSimple VanType = "Simple"
	VanTypeRugged VanType = "Rugged"
	VanTypeLuxury VanType = "Luxury"
)

const (
	VanNameLen        = 60
	VanDescriptionLen = 1500
	// MaxPrice keeps prices well inside a 32-bit signed integer column.
	MaxPrice = 2_000_000
)

func (t VanType) Valid() bool {
	switch t {
	case VanTypeSimple, VanTypeRugged, VanTypeLuxury:
		return true
	}
	return false
}

type Van struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	UUID        string    `json:"uuid" gorm:"uniqueIndex;not null;size:36"`
	Name        string    `json:"name" gorm:"not null;size:60"`
	Type        VanType   `json:"type" gorm:"not null;size:20"`
	Description string    `json:"description" gorm:"not null;size:1500"`
	PricePerDay int       `json:"pricePerDay" gorm:"not null;check:price_per_day > 0"`
	Image       string    `json:"image" gorm:"not null;size:500"`
	HostID      uint      `json:"-" gorm:"not null;index"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	Host *User `json:"-" gorm:"foreignKey:HostID"`
}

type HostSummary struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// VanResponse is the public projection of a van with its host's contact data.
type VanResponse struct {
	UUID        string      `json:"uuid"`
	Name        string      `json:"name"`
	PricePerDay int         `json:"pricePerDay"`
	Description string      `json:"description"`
	Type        VanType     `json:"type"`
	Image       string      `json:"image"`
	Host        HostSummary `json:"host"`
}

func (v Van) Response() VanResponse {
	resp := VanResponse{
		UUID:        v.UUID,
		Name:        v.Name,
		PricePerDay: v.PricePerDay,
		Description: v.Description,
		Type:        v.Type,
		Image:       v.Image,
	}
	if v.Host != nil {
		resp.Host = HostSummary{FullName: v.Host.FullName(), Email: v.Host.Email}
	}
	return resp
}
