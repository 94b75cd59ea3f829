package upload

import "time"

type Purpose string

const (
	PurposeRoomDesigns Purpose = "room-designs"
	PurposeAvatars     Purpose = "avatars"
	PurposePortfolio   Purpose = "portfolio"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRoomDesigns, PurposeAvatars, PurposePortfolio:
		return true
	}
	return false
}

// Upload records one stored image. Other rows reference it by URL.
type Upload struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Purpose   Purpose   `gorm:"column:purpose;size:20;not null" json:"purpose"`
	ObjectKey string    `gorm:"column:object_key;not null" json:"-"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	MimeType  string    `gorm:"column:mime_type;size:50" json:"mime_type"`
	Size      int64     `gorm:"column:size" json:"size"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
