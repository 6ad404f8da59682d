package gorm

import "time"

// Group is a registration category participants sign up under
// (community, school, office, temple...).
type Group struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:255;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// Filled by list/get queries through a correlated sub-select.
	ParticipantCount int64 `gorm:"column:participant_count;->;-:migration" json:"participantCount"`
}

// TableName specifies the table name for GORM
func (Group) TableName() string {
	return "participant_groups"
}
