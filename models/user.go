// File: /models/user.go
package models

import (
	"fmt"
	"time"
)

const (
	UserNameLen    = 40
	UserSurnameLen = 40
	UserEmailLen   = 40
)

type User struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;not null;size:36"`
	Name      string    `json:"name" gorm:"not null;size:40"`
	Surname   string    `json:"surname" gorm:"not null;size:40"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:40"`
	Password  string    `json:"-" gorm:"not null;size:255"`
	Avatar    string    `json:"avatar" gorm:"not null;size:500"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (u User) FullName() string {
	return fmt.Sprintf("%s %s", u.Name, u.Surname)
}

// UserProfile is the logged-in user's view of their own account.
type UserProfile struct {
	UUID         string        `json:"uuid"`
	Name         string        `json:"name"`
	Surname      string        `json:"surname"`
	Email        string        `json:"email"`
	Avatar       string        `json:"avatar"`
	Vans         []VanResponse `json:"vans"`
	Transactions []Transaction `json:"transactions"`
	Reviews      []Review      `json:"reviews"`
}

// NewUserProfile assembles the profile; nil slices are rendered as empty arrays.
func NewUserProfile(u User, vans []Van, transactions []Transaction, reviews []Review) UserProfile {
	profile := UserProfile{
		UUID:         u.UUID,
		Name:         u.Name,
		Surname:      u.Surname,
		Email:        u.Email,
		Avatar:       u.Avatar,
		Vans:         make([]VanResponse, 0, len(vans)),
		Transactions: transactions,
		Reviews:      reviews,
	}
	for _, v := range vans {
		profile.Vans = append(profile.Vans, v.Response())
	}
	if profile.Transactions == nil {
		profile.Transactions = []Transaction{}
	}
	if profile.Reviews == nil {
		profile.Reviews = []Review{}
	}
	return profile
}
