package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StringList is an ordered list of song IDs stored as a JSON text column.
// Keeping the order inside one column means an upsert replaces the whole
// list atomically, and the flat-file backend round-trips it unchanged.
type StringList []string

// Value implements driver.Valuer for database serialization.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database deserialization.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether id is present in the list.
func (l StringList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with every occurrence of id removed.
func (l StringList) Without(id string) StringList {
	result := make(StringList, 0, len(l))
	for _, v := range l {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}

// Playlist represents a named, ordered collection of song references.
// It owns song IDs, never song data; IDs whose songs have been removed
// from the library are filtered out at read time.
type Playlist struct {
	ID          uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name        string     `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=255"`
	Description string     `json:"description" gorm:"type:text;not null;default:'';column:description"`
	SongIDs     StringList `json:"song_ids" gorm:"type:text;not null;default:'[]';column:song_ids"`
	CreatedAt   time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewPlaylist creates a new empty Playlist with generated UUID and timestamps.
func NewPlaylist(name, description string) *Playlist {
	now := time.Now().UTC()
	return &Playlist{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		SongIDs:     StringList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy safe to mutate without aliasing the original.
func (p *Playlist) Clone() *Playlist {
	clone := *p
	clone.SongIDs = make(StringList, len(p.SongIDs))
	copy(clone.SongIDs, p.SongIDs)
	return &clone
}
