package services

import (
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/services/utils"
	"gorm.io/gorm"
)

// RepairService interface
type RepairService interface {
	CreateRepairRequest(userID uint, request *models.CreateRepairRequest) (*models.RepairRequest, *apiError.Error)
	GetRepairRequest(id uint) (*models.RepairRequest, *apiError.Error)
	ListForUser(userID uint) ([]models.RepairRequest, *apiError.Error)
	ListForTechnician(technicianID uint) ([]models.RepairRequest, *apiError.Error)
	ListOpen() ([]models.RepairRequest, *apiError.Error)
	UpdateStatus(id uint, actorID uint, status string) *apiError.Error
	NearbyTechnicians(lat, lon, radiusKm float64) ([]models.TechnicianMatch, *apiError.Error)
}

type repairService struct {
	repairRepo   db.RepairRepository
	authRepo     db.AuthRepository
	notification NotificationService
}

// NewRepairService instantiates a repairService
func NewRepairService(repairRepo db.RepairRepository, authRepo db.AuthRepository, notification NotificationService) RepairService {
	return &repairService{
		repairRepo:   repairRepo,
		authRepo:     authRepo,
		notification: notification,
	}
}

func (r *repairService) CreateRepairRequest(userID uint, request *models.CreateRepairRequest) (*models.RepairRequest, *apiError.Error) {
	if err := models.ConformInput(request); err != nil {
		log.Printf("conform error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	repairRequest := &models.RepairRequest{
		UserID:      userID,
		DeviceType:  request.DeviceType,
		Brand:       request.Brand,
		DeviceModel: request.DeviceModel,
		Description: request.Description,
		Status:      models.RequestStatusOpen,
		Latitude:    request.Latitude,
		Longitude:   request.Longitude,
	}
	created, err := r.repairRepo.CreateRepairRequest(repairRequest)
	if err != nil {
		log.Printf("create repair request: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

func (r *repairService) GetRepairRequest(id uint) (*models.RepairRequest, *apiError.Error) {
	request, err := r.repairRepo.FindRepairRequestByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.ErrNotFound
		}
		log.Printf("find repair request %d: %v", id, err)
		return nil, apiError.ErrInternalServerError
	}
	return request, nil
}

func (r *repairService) ListForUser(userID uint) ([]models.RepairRequest, *apiError.Error) {
	requests, err := r.repairRepo.ListRepairRequestsByUser(userID)
	if err != nil {
		log.Printf("list repair requests for user %d: %v", userID, err)
		return nil, apiError.ErrInternalServerError
	}
	return requests, nil
}

func (r *repairService) ListForTechnician(technicianID uint) ([]models.RepairRequest, *apiError.Error) {
	requests, err := r.repairRepo.ListRepairRequestsByTechnician(technicianID)
	if err != nil {
		log.Printf("list repair requests for technician %d: %v", technicianID, err)
		return nil, apiError.ErrInternalServerError
	}
	return requests, nil
}

func (r *repairService) ListOpen() ([]models.RepairRequest, *apiError.Error) {
	requests, err := r.repairRepo.ListOpenRepairRequests()
	if err != nil {
		log.Printf("list open repair requests: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return requests, nil
}

// UpdateStatus moves a request through its lifecycle. Only the owning
// customer or the assigned technician may move it, and only along a legal
// transition.
func (r *repairService) UpdateStatus(id uint, actorID uint, status string) *apiError.Error {
	request, err := r.repairRepo.FindRepairRequestByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError.ErrNotFound
		}
		log.Printf("find repair request %d: %v", id, err)
		return apiError.ErrInternalServerError
	}

	isOwner := request.UserID == actorID
	isAssigned := request.TechnicianID != nil && *request.TechnicianID == actorID
	if !isOwner && !isAssigned {
		return apiError.New("not allowed to update this request", http.StatusForbidden)
	}

	if err := models.ValidateTransition(request.Status, status); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := r.repairRepo.UpdateRepairRequestStatus(id, status); err != nil {
		log.Printf("update repair request %d status: %v", id, err)
		return apiError.ErrInternalServerError
	}

	// tell the other party
	notifyID := request.UserID
	if isOwner && request.TechnicianID != nil {
		notifyID = *request.TechnicianID
	}
	if notifyID != actorID {
		go r.notification.Notify(notifyID, models.NotificationKindStatus,
			fmt.Sprintf("Repair request #%d is now %s", id, status))
	}
	return nil
}

// NearbyTechnicians lists technicians within radiusKm of a point, closest
// first. Technicians without a stored location are skipped.
func (r *repairService) NearbyTechnicians(lat, lon, radiusKm float64) ([]models.TechnicianMatch, *apiError.Error) {
	technicians, err := r.authRepo.ListTechnicians()
	if err != nil {
		log.Printf("list technicians: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	matches := make([]models.TechnicianMatch, 0)
	for i := range technicians {
		t := &technicians[i]
		if t.Latitude == 0 && t.Longitude == 0 {
			continue
		}
		distance := utils.Haversine(lat, lon, t.Latitude, t.Longitude)
		if distance > radiusKm {
			continue
		}
		matches = append(matches, models.TechnicianMatch{
			UserResponse: models.UserResponse{
				ID:        t.ID,
				Fullname:  t.Fullname,
				Username:  t.Username,
				Telephone: t.Telephone,
				Email:     t.Email,
				RoleName:  models.RoleTechnician,
			},
			Skills:     t.Skills,
			DistanceKm: distance,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	return matches, nil
}
