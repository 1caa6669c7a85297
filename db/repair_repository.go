package db

import (
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// RepairRepository interface
type RepairRepository interface {
	CreateRepairRequest(request *models.RepairRequest) (*models.RepairRequest, error)
	FindRepairRequestByID(id uint) (*models.RepairRequest, error)
	ListRepairRequestsByUser(userID uint) ([]models.RepairRequest, error)
	ListRepairRequestsByTechnician(technicianID uint) ([]models.RepairRequest, error)
	ListOpenRepairRequests() ([]models.RepairRequest, error)
	UpdateRepairRequestStatus(id uint, status string) error
	AssignTechnician(id uint, technicianID uint) error
}

type repairRepo struct {
	DB *gorm.DB
}

// NewRepairRepo creates a new instance of RepairRepository
func NewRepairRepo(db *GormDB) RepairRepository {
	return &repairRepo{db.DB}
}

func (r *repairRepo) CreateRepairRequest(request *models.RepairRequest) (*models.RepairRequest, error) {
	if err := r.DB.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repairRepo) FindRepairRequestByID(id uint) (*models.RepairRequest, error) {
	var request models.RepairRequest
	err := r.DB.Preload("Media").Preload("Quotes").First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repairRepo) ListRepairRequestsByUser(userID uint) ([]models.RepairRequest, error) {
	var requests []models.RepairRequest
	err := r.DB.Preload("Media").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repairRepo) ListRepairRequestsByTechnician(technicianID uint) ([]models.RepairRequest, error) {
	var requests []models.RepairRequest
	err := r.DB.Preload("Media").Where("technician_id = ?", technicianID).
		Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repairRepo) ListOpenRepairRequests() ([]models.RepairRequest, error) {
	var requests []models.RepairRequest
	err := r.DB.Preload("Media").
		Where("status IN ?", []string{models.RequestStatusOpen, models.RequestStatusQuoted}).
		Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repairRepo) UpdateRepairRequestStatus(id uint, status string) error {
	return r.DB.Model(&models.RepairRequest{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *repairRepo) AssignTechnician(id uint, technicianID uint) error {
	return r.DB.Model(&models.RepairRequest{}).Where("id = ?", id).
		Update("technician_id", technicianID).Error
}
