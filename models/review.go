package models

// Review rates a technician after a completed repair
type Review struct {
	Model
	RepairRequestID uint   `gorm:"uniqueIndex;not null" json:"repair_request_id"`
	ReviewerID      uint   `gorm:"index;not null" json:"reviewer_id"`
	TechnicianID    uint   `gorm:"index;not null" json:"technician_id"`
	Rating          int    `json:"rating"`
	Comment         string `gorm:"type:text" json:"comment" conform:"trim"`
}

type CreateReviewRequest struct {
	RepairRequestID uint   `json:"repair_request_id" binding:"required"`
	Rating          int    `json:"rating" binding:"required,min=1,max=5"`
	Comment         string `json:"comment" conform:"trim"`
}
