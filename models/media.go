package models

// Media is an uploaded file (repair photos, avatars) stored in S3
type Media struct {
	Model
	UserID          uint   `gorm:"index" json:"user_id"`
	RepairRequestID uint   `gorm:"index" json:"repair_request_id"`
	FileURL         string `json:"file_url"`
	ThumbnailURL    string `json:"thumbnail_url"`
	FileType        string `json:"file_type"`
	FileSize        int64  `json:"file_size"`
}
