package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountKind string

const (
	KindCustomer  AccountKind = "customer"
	KindDeveloper AccountKind = "developer"
)

// Credentials is the identity part shared by every account kind.
type Credentials struct {
	Email                string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash         string     `gorm:"not null" json:"-"`
	ResetPasswordToken   *string    `gorm:"index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
}

// Account is a customer or a developer. Exactly one of Customer and
// Developer is set, matching UserType.
type Account struct {
	Credentials `gorm:"embedded"`

	ID        string            `gorm:"primaryKey;size:36" json:"_id"`
	UserType  AccountKind       `gorm:"not null;index" json:"userType"`
	Customer  *CustomerProfile  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	Developer *DeveloperProfile `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Account) IsCustomer() bool  { return a.UserType == KindCustomer && a.Customer != nil }
func (a *Account) IsDeveloper() bool { return a.UserType == KindDeveloper && a.Developer != nil }

type CustomerProfile struct {
	AccountID string    `gorm:"primaryKey;size:36" json:"-"`
	FirstName string    `gorm:"not null" json:"firstName"`
	LastName  string    `gorm:"not null" json:"lastName"`
	BirthDate time.Time `gorm:"not null" json:"birthDate"`
}

type DeveloperProfile struct {
	AccountID          string `gorm:"primaryKey;size:36" json:"-"`
	CompanyName        string `gorm:"not null" json:"companyName"`
	CompanyDescription string `gorm:"not null" json:"companyDescription"`
	LogoImageURL       string `gorm:"not null" json:"logoImageUrl"`
}

// AccountView is the public shape of an account, flattened the way the
// frontend stores it.
type AccountView struct {
	ID                 string      `json:"_id"`
	Email              string      `json:"email"`
	UserType           AccountKind `json:"userType"`
	FirstName          string      `json:"firstName,omitempty"`
	LastName           string      `json:"lastName,omitempty"`
	BirthDate          *time.Time  `json:"birthDate,omitempty"`
	CompanyName        string      `json:"companyName,omitempty"`
	CompanyDescription string      `json:"companyDescription,omitempty"`
	LogoImageURL       string      `json:"logoImageUrl,omitempty"`
	Wishlist           *[]string   `json:"wishlist,omitempty"`
}

func (a *Account) View() AccountView {
	v := AccountView{ID: a.ID, Email: a.Email, UserType: a.UserType}
	if a.Customer != nil {
		birth := a.Customer.BirthDate
		v.FirstName = a.Customer.FirstName
		v.LastName = a.Customer.LastName
		v.BirthDate = &birth
	}
	if a.Developer != nil {
		v.CompanyName = a.Developer.CompanyName
		v.CompanyDescription = a.Developer.CompanyDescription
		v.LogoImageURL = a.Developer.LogoImageURL
	}
	return v
}

// LoginInput - login request body
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterDeveloperInput struct {
	CompanyName        string `json:"companyName" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=6,max=72"`
	CompanyDescription string `json:"companyDescription" validate:"required"`
	LogoImageURL       string `json:"logoImageUrl" validate:"required"`
}

type RegisterCustomerInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	BirthDate string `json:"birthDate" validate:"required"`
}

type PasswordResetRequestInput struct {
	Email string `json:"email" validate:"required"`
}

type PasswordResetInput struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}
