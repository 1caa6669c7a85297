package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/server/response"
)

func (s *Server) handleCreateReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.CreateReviewRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		reviewerID := currentUserID(c)
		review, apiErr := s.ReviewService.CreateReview(reviewerID, &request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "review created", http.StatusCreated, review, nil)
	}
}

func (s *Server) handleGetTechnicianReviews() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("technicianID"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid technician id", http.StatusBadRequest, nil, err)
			return
		}

		reviews, average, apiErr := s.ReviewService.TechnicianReviews(uint(id))
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "reviews retrieved", http.StatusOK, gin.H{
			"reviews":        reviews,
			"average_rating": average,
		}, nil)
	}
}
