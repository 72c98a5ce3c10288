// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`

	// Relationships
	Ideas []Idea `json:"ideas,omitempty" gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`
	Deals []Deal `json:"deals,omitempty" gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
