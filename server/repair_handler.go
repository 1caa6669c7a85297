package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/repairhubng/repairhub/errors"
	"github.com/repairhubng/repairhub/models"
	"github.com/repairhubng/repairhub/server/response"
)

const defaultSearchRadiusKm = 25.0

func (s *Server) handleCreateRepairRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.CreateRepairRequest
		if err := c.ShouldBind(&request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		userID := currentUserID(c)
		created, apiErr := s.RepairService.CreateRepairRequest(userID, &request)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		// photos are optional on create
		form, err := c.MultipartForm()
		if err == nil {
			if files := form.File["photos"]; len(files) > 0 {
				media, apiErr := s.MediaService.UploadRepairPhotos(c.Request.Context(), files, userID, created.ID)
				if apiErr != nil {
					response.JSON(c, "", apiErr.Status, nil, apiErr)
					return
				}
				created.Media = media
			}
		}

		response.JSON(c, "repair request created", http.StatusCreated, created, nil)
	}
}

func (s *Server) handleListMyRepairRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		requests, apiErr := s.RepairService.ListForUser(userID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "repair requests retrieved", http.StatusOK, requests, nil)
	}
}

func (s *Server) handleListOpenRepairRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, apiErr := s.RepairService.ListOpen()
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "open repair requests retrieved", http.StatusOK, requests, nil)
	}
}

func (s *Server) handleListAssignedRepairRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		technicianID := currentUserID(c)
		requests, apiErr := s.RepairService.ListForTechnician(technicianID)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "assigned repair requests retrieved", http.StatusOK, requests, nil)
	}
}

func (s *Server) handleGetRepairRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid repair request id", http.StatusBadRequest, nil, err)
			return
		}

		request, apiErr := s.RepairService.GetRepairRequest(uint(id))
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "repair request retrieved", http.StatusOK, request, nil)
	}
}

func (s *Server) handleUpdateRepairRequestStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid repair request id", http.StatusBadRequest, nil, err)
			return
		}

		var request struct {
			Status string `json:"status" binding:"required"`
		}
		if err := decode(c, &request); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		actorID := currentUserID(c)
		if apiErr := s.RepairService.UpdateStatus(uint(id), actorID, request.Status); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "status updated", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleNearbyTechnicians() gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLon != nil {
			response.JSON(c, "lat and lng query params are required", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		radius := defaultSearchRadiusKm
		if raw := c.Query("radius_km"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed <= 0 {
				response.JSON(c, "invalid radius_km", http.StatusBadRequest, nil, errs.ErrBadRequest)
				return
			}
			radius = parsed
		}

		matches, apiErr := s.RepairService.NearbyTechnicians(lat, lon, radius)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "nearby technicians retrieved", http.StatusOK, matches, nil)
	}
}
