package db

import (
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// QuoteRepository interface
type QuoteRepository interface {
	CreateQuote(quote *models.Quote) (*models.Quote, error)
	FindQuoteByID(id uint) (*models.Quote, error)
	ListQuotesForRequest(repairRequestID uint) ([]models.Quote, error)
	HasQuoted(repairRequestID, technicianID uint) (bool, error)
	AcceptQuote(id uint) error
}

type quoteRepo struct {
	DB *gorm.DB
}

// NewQuoteRepo creates a new instance of QuoteRepository
func NewQuoteRepo(db *GormDB) QuoteRepository {
	return &quoteRepo{db.DB}
}

func (q *quoteRepo) CreateQuote(quote *models.Quote) (*models.Quote, error) {
	if err := q.DB.Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (q *quoteRepo) FindQuoteByID(id uint) (*models.Quote, error) {
	var quote models.Quote
	if err := q.DB.First(&quote, id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (q *quoteRepo) ListQuotesForRequest(repairRequestID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := q.DB.Where("repair_request_id = ?", repairRequestID).
		Order("amount ASC").Find(&quotes).Error
	return quotes, err
}

func (q *quoteRepo) HasQuoted(repairRequestID, technicianID uint) (bool, error) {
	var count int64
	err := q.DB.Model(&models.Quote{}).
		Where("repair_request_id = ? AND technician_id = ?", repairRequestID, technicianID).
		Count(&count).Error
	return count > 0, err
}

func (q *quoteRepo) AcceptQuote(id uint) error {
	return q.DB.Model(&models.Quote{}).Where("id = ?", id).
		Update("accepted", true).Error
}
