package models

// StatusPreset is a user-saved availability label with display metadata.
// App-defined presets live in the status registry, not in this table.
type StatusPreset struct {
	BaseModel

	OwnerID     string `gorm:"type:uuid;not null;index" json:"owner_id"`
	DisplayName string `gorm:"not null" json:"display_name"`
	IconKey     string `json:"icon_key"`
	Color       string `json:"color"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}
