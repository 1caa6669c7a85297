package db

import (
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// ReviewRepository interface
type ReviewRepository interface {
	CreateReview(review *models.Review) (*models.Review, error)
	FindReviewByRequestID(repairRequestID uint) (*models.Review, error)
	ListReviewsForTechnician(technicianID uint) ([]models.Review, error)
	AverageRating(technicianID uint) (float64, error)
}

type reviewRepo struct {
	DB *gorm.DB
}

// NewReviewRepo creates a new instance of ReviewRepository
func NewReviewRepo(db *GormDB) ReviewRepository {
	return &reviewRepo{db.DB}
}

func (r *reviewRepo) CreateReview(review *models.Review) (*models.Review, error) {
	if err := r.DB.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepo) FindReviewByRequestID(repairRequestID uint) (*models.Review, error) {
	var review models.Review
	err := r.DB.Where("repair_request_id = ?", repairRequestID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) ListReviewsForTechnician(technicianID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.Where("technician_id = ?", technicianID).
		Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) AverageRating(technicianID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("technician_id = ?", technicianID).
		Scan(&avg).Error
	return avg, err
}
