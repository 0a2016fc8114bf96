package models

import (
	"github.com/creditmonitor/backend/internal/domain/identity"
)

// UserModel is the persistence model for identity.User
type UserModel struct {
	BaseModel
	Username     string `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:100;not null"`
	FullName     string `gorm:"size:100;not null"`
	Role         string `gorm:"size:10;not null"`
}

// TableName specifies the table name
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		Role:         identity.Role(m.Role),
	}
}

// UserModelFromDomain converts a domain user to its persistence model
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         string(u.Role),
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
