package services

import (
	"fmt"
	"log"
	"net/http"

	"github.com/repairhubng/repairhub/db"
	apiError "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"gorm.io/gorm"
)

// QuoteService interface
type QuoteService interface {
	SubmitQuote(technicianID uint, request *models.CreateQuoteRequest) (*models.Quote, *apiError.Error)
	ListQuotes(repairRequestID uint) ([]models.Quote, *apiError.Error)
	AcceptQuote(quoteID uint, customerID uint) *apiError.Error
}

type quoteService struct {
	quoteRepo    db.QuoteRepository
	repairRepo   db.RepairRepository
	notification NotificationService
}

// NewQuoteService instantiates a quoteService
func NewQuoteService(quoteRepo db.QuoteRepository, repairRepo db.RepairRepository, notification NotificationService) QuoteService {
	return &quoteService{
		quoteRepo:    quoteRepo,
		repairRepo:   repairRepo,
		notification: notification,
	}
}

// SubmitQuote records a technician's offer and moves an open request to
// quoted. One quote per technician per request.
func (q *quoteService) SubmitQuote(technicianID uint, request *models.CreateQuoteRequest) (*models.Quote, *apiError.Error) {
	if err := models.ConformInput(request); err != nil {
		log.Printf("conform error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	repairRequest, err := q.repairRepo.FindRepairRequestByID(request.RepairRequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.ErrNotFound
		}
		log.Printf("find repair request %d: %v", request.RepairRequestID, err)
		return nil, apiError.ErrInternalServerError
	}
	if repairRequest.UserID == technicianID {
		return nil, apiError.New("cannot quote your own request", http.StatusBadRequest)
	}
	if repairRequest.Status != models.RequestStatusOpen && repairRequest.Status != models.RequestStatusQuoted {
		return nil, apiError.New("request is no longer accepting quotes", http.StatusConflict)
	}

	quoted, err := q.quoteRepo.HasQuoted(request.RepairRequestID, technicianID)
	if err != nil {
		log.Printf("check existing quote: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if quoted {
		return nil, apiError.New("you already quoted this request", http.StatusConflict)
	}

	quote := &models.Quote{
		RepairRequestID: request.RepairRequestID,
		TechnicianID:    technicianID,
		Amount:          request.Amount,
		Note:            request.Note,
	}
	created, err := q.quoteRepo.CreateQuote(quote)
	if err != nil {
		log.Printf("create quote: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if repairRequest.Status == models.RequestStatusOpen {
		if err := q.repairRepo.UpdateRepairRequestStatus(repairRequest.ID, models.RequestStatusQuoted); err != nil {
			log.Printf("mark request %d quoted: %v", repairRequest.ID, err)
		}
	}

	go q.notification.Notify(repairRequest.UserID, models.NotificationKindQuote,
		fmt.Sprintf("New quote of %.2f on your repair request #%d", created.Amount, repairRequest.ID))
	return created, nil
}

func (q *quoteService) ListQuotes(repairRequestID uint) ([]models.Quote, *apiError.Error) {
	quotes, err := q.quoteRepo.ListQuotesForRequest(repairRequestID)
	if err != nil {
		log.Printf("list quotes for request %d: %v", repairRequestID, err)
		return nil, apiError.ErrInternalServerError
	}
	return quotes, nil
}

// AcceptQuote assigns the quoting technician and moves the request to
// accepted. Only the request owner may accept.
func (q *quoteService) AcceptQuote(quoteID uint, customerID uint) *apiError.Error {
	quote, err := q.quoteRepo.FindQuoteByID(quoteID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError.ErrNotFound
		}
		log.Printf("find quote %d: %v", quoteID, err)
		return apiError.ErrInternalServerError
	}

	repairRequest, err := q.repairRepo.FindRepairRequestByID(quote.RepairRequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError.ErrNotFound
		}
		log.Printf("find repair request %d: %v", quote.RepairRequestID, err)
		return apiError.ErrInternalServerError
	}
	if repairRequest.UserID != customerID {
		return apiError.New("only the request owner can accept a quote", http.StatusForbidden)
	}
	if err := models.ValidateTransition(repairRequest.Status, models.RequestStatusAccepted); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}

	if err := q.quoteRepo.AcceptQuote(quoteID); err != nil {
		log.Printf("accept quote %d: %v", quoteID, err)
		return apiError.ErrInternalServerError
	}
	if err := q.repairRepo.AssignTechnician(repairRequest.ID, quote.TechnicianID); err != nil {
		log.Printf("assign technician on request %d: %v", repairRequest.ID, err)
		return apiError.ErrInternalServerError
	}
	if err := q.repairRepo.UpdateRepairRequestStatus(repairRequest.ID, models.RequestStatusAccepted); err != nil {
		log.Printf("mark request %d accepted: %v", repairRequest.ID, err)
		return apiError.ErrInternalServerError
	}

	go q.notification.Notify(quote.TechnicianID, models.NotificationKindQuote,
		fmt.Sprintf("Your quote on repair request #%d was accepted", repairRequest.ID))
	return nil
}
