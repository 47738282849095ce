package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/apperrors"
)

type Role string

// MinPasswordLength matches the registration rule.
const MinPasswordLength = 6

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleAdmin:
		return true
	}
	return false
}

// Account is the persisted identity and the single mutable balance.
type Account struct {
	ID           uuid.UUID   `json:"id" db:"id" example:"2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d"`
	Name         string      `json:"name" db:"name" example:"Ada Obi"`
	Role         Role        `json:"role" db:"role" example:"student"`
	Email        *string     `json:"email,omitempty" db:"email" example:"parent@example.com"`
	StudentID    *string     `json:"studentId,omitempty" db:"student_id" example:"STU-0042"`
	Class        *string     `json:"class,omitempty" db:"class" example:"JSS2"`
	SchoolID     *uuid.UUID  `json:"schoolId,omitempty" db:"school_id"`
	ParentID     *uuid.UUID  `json:"parentId,omitempty" db:"parent_id"`
	Children     []uuid.UUID `json:"children,omitempty" db:"-"`
	Balance      int64       `json:"balance" db:"balance" example:"150000"` // minor units
	Version      int         `json:"-" db:"version"`                         // optimistic lock counter
	PasswordHash string      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// IdentifierKind says which column a login identifier is matched against.
type IdentifierKind int

const (
	IdentifierEmail IdentifierKind = iota
	IdentifierStudentID
)

// ClassifyIdentifier treats anything containing "@" as an email. Student ids
// never contain "@", so the two namespaces cannot overlap.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if strings.Contains(identifier, "@") {
		return IdentifierEmail
	}
	return IdentifierStudentID
}

// AccountFields is the flat column set an AccountSpec persists to.
type AccountFields struct {
	Name      string
	Role      Role
	Email     *string
	StudentID *string
	Class     *string
	SchoolID  *uuid.UUID
	ParentID  *uuid.UUID
}

// AccountSpec is a validated, role-specific account to create. The concrete
// types are StudentSpec, ParentSpec and AdminSpec.
type AccountSpec interface {
	Role() Role
	Fields() AccountFields
}

type StudentSpec struct {
	Name      string
	StudentID string
	Class     string
	SchoolID  *uuid.UUID
	ParentID  *uuid.UUID
}

func (s StudentSpec) Role() Role { return RoleStudent }

func (s StudentSpec) Fields() AccountFields {
	studentID := s.StudentID
	f := AccountFields{
		Name:      s.Name,
		Role:      RoleStudent,
		StudentID: &studentID,
		SchoolID:  s.SchoolID,
		ParentID:  s.ParentID,
	}
	if s.Class != "" {
		class := s.Class
		f.Class = &class
	}
	return f
}

type ParentSpec struct {
	Name     string
	Email    string
	SchoolID *uuid.UUID
}

func (s ParentSpec) Role() Role { return RoleParent }

func (s ParentSpec) Fields() AccountFields {
	email := s.Email
	return AccountFields{Name: s.Name, Role: RoleParent, Email: &email, SchoolID: s.SchoolID}
}

type AdminSpec struct {
	Name  string
	Email string
}

func (s AdminSpec) Role() Role { return RoleAdmin }

func (s AdminSpec) Fields() AccountFields {
	email := s.Email
	return AccountFields{Name: s.Name, Role: RoleAdmin, Email: &email}
}

// AccountInput is the untyped shape accepted from callers before the role
// decides which fields are required.
type AccountInput struct {
	Name      string
	Role      Role
	Email     string
	StudentID string
	Class     string
	SchoolID  *uuid.UUID
	ParentID  *uuid.UUID
}

// NewAccountSpec validates in against the rules of its role.
func NewAccountSpec(in AccountInput) (AccountSpec, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}

	switch in.Role {
	case RoleStudent:
		studentID := strings.TrimSpace(in.StudentID)
		if studentID == "" {
			return nil, apperrors.Validation("studentId", "studentId is required for students")
		}
		if strings.Contains(studentID, "@") {
			return nil, apperrors.Validation("studentId", "studentId must not contain '@'")
		}
		if in.Email != "" {
			return nil, apperrors.Validation("email", "students sign in with a studentId, not an email")
		}
		return StudentSpec{
			Name:      name,
			StudentID: studentID,
			Class:     strings.TrimSpace(in.Class),
			SchoolID:  in.SchoolID,
			ParentID:  in.ParentID,
		}, nil
	case RoleParent, RoleAdmin:
		email := strings.ToLower(strings.TrimSpace(in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperrors.Validation("email", "a valid email is required for "+string(in.Role)+"s")
		}
		if in.StudentID != "" {
			return nil, apperrors.Validation("studentId", "only students have a studentId")
		}
		if in.ParentID != nil {
			return nil, apperrors.Validation("parentId", "only students can be linked to a parent")
		}
		if in.Role == RoleParent {
			return ParentSpec{Name: name, Email: email, SchoolID: in.SchoolID}, nil
		}
		return AdminSpec{Name: name, Email: email}, nil
	default:
		return nil, apperrors.Validation("role", "role must be one of student, parent, admin")
	}
}

// AccountPatch is a partial update. A nil field is left unchanged.
type AccountPatch struct {
	Name      *string
	Email     *string
	StudentID *string
	Class     *string
	SchoolID  *uuid.UUID
	ParentID  *uuid.UUID

	// Password is the plaintext reset requested by an admin. The service
	// hashes it into PasswordHash; stores only read PasswordHash.
	Password     *string
	PasswordHash *string
}

func (p AccountPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.StudentID == nil &&
		p.Class == nil && p.SchoolID == nil && p.ParentID == nil &&
		p.Password == nil && p.PasswordHash == nil
}

// Validate checks the patch against the role of the account it applies to.
func (p AccountPatch) Validate(role Role) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperrors.Validation("name", "name must not be empty")
	}
	if p.Password != nil && len(*p.Password) < MinPasswordLength {
		return apperrors.Validation("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if role == RoleStudent {
		if p.Email != nil {
			return apperrors.Validation("email", "students sign in with a studentId, not an email")
		}
		if p.StudentID != nil {
			id := strings.TrimSpace(*p.StudentID)
			if id == "" || strings.Contains(id, "@") {
				return apperrors.Validation("studentId", "studentId must be non-empty and must not contain '@'")
			}
		}
		return nil
	}
	if p.StudentID != nil || p.Class != nil || p.ParentID != nil {
		return apperrors.Validation("studentId", "studentId, class and parentId apply to students only")
	}
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		return apperrors.Validation("email", "a valid email is required")
	}
	return nil
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	Role     Role
	Search   string
	SchoolID *uuid.UUID
}
