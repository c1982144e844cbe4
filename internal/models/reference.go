package models

import (
	"strings"
	"time"
)

// ReferenceKind names a lookup table; the value doubles as the REST path.
type ReferenceKind string

const (
	KindProjectType ReferenceKind = "projecttypes"
	KindPlatform    ReferenceKind = "platforms"
	KindTaskGroup   ReferenceKind = "task-groups"
	KindPosition    ReferenceKind = "positions"
	KindRole        ReferenceKind = "roles"
)

var ReferenceKinds = []ReferenceKind{KindProjectType, KindPlatform, KindTaskGroup, KindPosition, KindRole}

func ParseReferenceKind(s string) (ReferenceKind, bool) {
	k := ReferenceKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ReferenceKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

func (k ReferenceKind) Title() string {
	switch k {
	case KindProjectType:
		return "Project Type"
	case KindPlatform:
		return "Platform"
	case KindTaskGroup:
		return "Task Group"
	case KindPosition:
		return "Position"
	case KindRole:
		return "Role"
	}
	return string(k)
}

// HasRole reports whether items of this kind belong to a user role.
func (k ReferenceKind) HasRole() bool {
	return k == KindPosition
}

// ReferenceItem is an (id, label) lookup row shared by every reference kind.
type ReferenceItem struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	Kind      ReferenceKind `json:"kind" gorm:"type:varchar(20);uniqueIndex:idx_reference_kind_label;not null"`
	Label     string        `json:"label" gorm:"size:100;uniqueIndex:idx_reference_kind_label;not null"`
	Role      Role          `json:"role,omitempty" gorm:"type:varchar(20)"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
