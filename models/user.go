package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserRole enum
type UserRole string

const (
	RoleCitizen    UserRole = "citizen"
	RoleStaff      UserRole = "staff"
	RoleAdmin      UserRole = "admin"
	RoleDepartment UserRole = "department"
)

// CanBeAssigned reports whether a user with this role may be assigned issues.
func (r UserRole) CanBeAssigned() bool {
	return r == RoleAdmin || r == RoleStaff
}

// CanPostUpdates reports whether a user with this role may append entries to
// an issue's update log.
func (r UserRole) CanPostUpdates() bool {
	return r == RoleAdmin || r == RoleDepartment || r == RoleStaff
}

// IsStaffOrAdmin reports whether this role may edit issues it does not own.
func (r UserRole) IsStaffOrAdmin() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Role      UserRole           `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserRef is the reduced identity shape embedded in issue responses.
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Phone string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Ref returns the reduced identity shape for embedding in responses.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
