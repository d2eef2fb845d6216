package permission

import (
	"fmt"
	"time"
)

// Key is a raw permission key used for programmatic checks, e.g. "admin".
type Key string

func (k Key) PermissionKey() string {
	return string(k)
}

// KeyRef is anything that resolves to a permission key: a Key or a *Permission.
type KeyRef interface {
	PermissionKey() string
}

type Permission struct {
	id          uint
	key         string
	name        string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

func NewPermission(key, name, description string) (*Permission, error) {
	if key == "" {
		return nil, fmt.Errorf("permission key is required")
	}
	if name == "" {
		return nil, fmt.Errorf("permission name is required")
	}

	now := time.Now()
	return &Permission{
		key:         key,
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructPermission(id uint, key, name, description string, createdAt, updatedAt time.Time) (*Permission, error) {
	if id == 0 {
		return nil, fmt.Errorf("permission ID cannot be zero")
	}
	if key == "" {
		return nil, fmt.Errorf("permission %d has an empty key", id)
	}

	return &Permission{
		id:          id,
		key:         key,
		name:        name,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (p *Permission) ID() uint {
	return p.id
}

func (p *Permission) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("permission ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("permission ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Permission) Key() string {
	return p.key
}

// PermissionKey makes *Permission a KeyRef.
func (p *Permission) PermissionKey() string {
	if p == nil {
		return ""
	}
	return p.key
}

func (p *Permission) Name() string {
	return p.name
}

func (p *Permission) Description() string {
	return p.description
}

func (p *Permission) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Permission) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Permission) UpdateName(name string) error {
	if name == "" {
		return fmt.Errorf("permission name cannot be empty")
	}
	p.name = name
	p.updatedAt = time.Now()
	return nil
}

func (p *Permission) UpdateDescription(description string) {
	p.description = description
	p.updatedAt = time.Now()
}
