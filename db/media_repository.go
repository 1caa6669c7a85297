package db

import (
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// MediaRepository interface
type MediaRepository interface {
	CreateMedia(media *models.Media) (*models.Media, error)
	ListMediaForRequest(repairRequestID uint) ([]models.Media, error)
}

type mediaRepo struct {
	DB *gorm.DB
}

// NewMediaRepo creates a new instance of MediaRepository
func NewMediaRepo(db *GormDB) MediaRepository {
	return &mediaRepo{db.DB}
}

func (m *mediaRepo) CreateMedia(media *models.Media) (*models.Media, error) {
	if err := m.DB.Create(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (m *mediaRepo) ListMediaForRequest(repairRequestID uint) ([]models.Media, error) {
	var media []models.Media
	err := m.DB.Where("repair_request_id = ?", repairRequestID).Find(&media).Error
	return media, err
}
