package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/server/response"
)

func (s *Server) handleSubmitQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.CreateQuoteRequest
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		technicianID := currentUserID(c)
		quote, apiErr := s.QuoteService.SubmitQuote(technicianID, &request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "quote submitted", http.StatusCreated, quote, nil)
	}
}

func (s *Server) handleListQuotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid repair request id", http.StatusBadRequest, nil, err)
			return
		}

		quotes, apiErr := s.QuoteService.ListQuotes(uint(id))
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "quotes retrieved", http.StatusOK, quotes, nil)
	}
}

func (s *Server) handleAcceptQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid quote id", http.StatusBadRequest, nil, err)
			return
		}

		customerID := currentUserID(c)
		if apiErr := s.QuoteService.AcceptQuote(uint(id), customerID); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "quote accepted", http.StatusOK, nil, nil)
	}
}
