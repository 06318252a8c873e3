package models

// Setting represents a single cross-session key/value entry.
type Setting struct {
	Key   string `json:"key" gorm:"type:text;primaryKey;column:key" validate:"required"`
	Value string `json:"value" gorm:"type:text;not null;column:value"`
}

// Setting keys known to the application.
const (
	SettingVolume = "volume"
)

// Volume bounds and default (percent).
const (
	VolumeMin     = 0
	VolumeMax     = 100
	VolumeDefault = 70
)
