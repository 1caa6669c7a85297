package models

// Quote is a technician's offer on an open repair request
type Quote struct {
	Model
	RepairRequestID uint    `gorm:"index;not null" json:"repair_request_id"`
	TechnicianID    uint    `gorm:"index;not null" json:"technician_id"`
	Amount          float64 `json:"amount"`
	Note            string  `gorm:"type:text" json:"note" conform:"trim"`
	Accepted        bool    `gorm:"default:false" json:"accepted"`
}

type CreateQuoteRequest struct {
	RepairRequestID uint    `json:"repair_request_id" binding:"required"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Note            string  `json:"note" conform:"trim"`
}
