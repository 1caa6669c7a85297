package services

import (
	"log"
	"net/http"

	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// ReviewService interface
type ReviewService interface {
	CreateReview(reviewerID uint, request *models.CreateReviewRequest) (*models.Review, *apiError.Error)
	TechnicianReviews(technicianID uint) ([]models.Review, float64, *apiError.Error)
}

type reviewService struct {
	reviewRepo db.ReviewRepository
	repairRepo db.RepairRepository
}

// NewReviewService instantiates a reviewService
func NewReviewService(reviewRepo db.ReviewRepository, repairRepo db.RepairRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		repairRepo: repairRepo,
	}
}

// CreateReview records a rating for a completed repair. One review per
// request, and only the customer who owned it may review.
func (r *reviewService) CreateReview(reviewerID uint, request *models.CreateReviewRequest) (*models.Review, *apiError.Error) {
	if err := models.ConformInput(request); err != nil {
		log.Printf("conform error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	repairRequest, err := r.repairRepo.FindRepairRequestByID(request.RepairRequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.ErrNotFound
		}
		log.Printf("find repair request %d: %v", request.RepairRequestID, err)
		return nil, apiError.ErrInternalServerError
	}
	if repairRequest.UserID != reviewerID {
		return nil, apiError.New("only the request owner can leave a review", http.StatusForbidden)
	}
	if repairRequest.Status != models.RequestStatusCompleted {
		return nil, apiError.New("repair request is not completed", http.StatusBadRequest)
	}
	if repairRequest.TechnicianID == nil {
		return nil, apiError.New("repair request has no assigned technician", http.StatusBadRequest)
	}

	if _, err := r.reviewRepo.FindReviewByRequestID(request.RepairRequestID); err == nil {
		return nil, apiError.New("request already reviewed", http.StatusConflict)
	}

	review := &models.Review{
		RepairRequestID: request.RepairRequestID,
		ReviewerID:      reviewerID,
		TechnicianID:    *repairRequest.TechnicianID,
		Rating:          request.Rating,
		Comment:         request.Comment,
	}
	created, err := r.reviewRepo.CreateReview(review)
	if err != nil {
		log.Printf("create review: %v", err)
		if uniqueErr := apiError.GetUniqueContraintError(err); uniqueErr != nil {
			return nil, apiError.New("request already reviewed", http.StatusConflict)
		}
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

func (r *reviewService) TechnicianReviews(technicianID uint) ([]models.Review, float64, *apiError.Error) {
	reviews, err := r.reviewRepo.ListReviewsForTechnician(technicianID)
	if err != nil {
		log.Printf("list reviews for technician %d: %v", technicianID, err)
		return nil, 0, apiError.ErrInternalServerError
	}
	avg, err := r.reviewRepo.AverageRating(technicianID)
	if err != nil {
		log.Printf("average rating for technician %d: %v", technicianID, err)
		return nil, 0, apiError.ErrInternalServerError
	}
	return reviews, avg, nil
}
