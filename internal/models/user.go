package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleITBP        Role = "ITBP"
	RoleITGA        Role = "ITGA"
	RoleSAP         Role = "SAP"
	RoleDataScience Role = "DATA_SCIENCE"
	RoleEngineer    Role = "ENGINEER"
)

var Roles = []Role{RoleAdmin, RoleITBP, RoleITGA, RoleSAP, RoleDataScience, RoleEngineer}

// AssignableGroups are the roles a project or task can be delegated to.
var AssignableGroups = []Role{RoleITBP, RoleSAP, RoleDataScience, RoleITGA}

// ParseRole normalises user input ("data_science", " Admin ") to a Role.
// Unknown values come back as-is in upper case; check with Valid.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type Position string

const (
	PositionBackend   Position = "BACKEND"
	PositionFrontend  Position = "FRONTEND"
	PositionFullstack Position = "FULLSTACK"
	PositionMobile    Position = "MOBILE"
)

var Positions = []Position{PositionBackend, PositionFrontend, PositionFullstack, PositionMobile}

func ParsePosition(s string) Position {
	return Position(strings.ToUpper(strings.TrimSpace(s)))
}

func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

type User struct {
	SAP          int64    `json:"SAP" gorm:"primaryKey;autoIncrement:false"`
	Name         string   `json:"name" gorm:"size:255;not null"`
	Username     string   `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         Role     `json:"role" gorm:"type:varchar(20);not null"`
	Position     Position `json:"position" gorm:"type:varchar(20)"`

	// filled by the API from project/task counts, never stored
	TotalProjects int64 `json:"totalProjects" gorm:"-"`
	TotalTasks    int64 `json:"totalTasks" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasWork reports whether the user still owns projects or tasks.
func (u User) HasWork() bool {
	return u.TotalProjects > 0 || u.TotalTasks > 0
}
