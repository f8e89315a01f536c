package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/carefront/models"
	"github.com/techagentng/carefront/server/response"
)

func (s *Server) handleListAppointments() gin.HandlerFunc {
	return func(c *gin.Context) {
		appointments, err := s.AppointmentService.ListAppointments(c.Request.Context(), c.Query("status"), c.Query("search"))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "retrieved appointments", http.StatusOK, appointments, nil)
	}
}

func (s *Server) handleCreateAppointment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateAppointmentRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		appointment, err := s.AppointmentService.CreateAppointment(c.Request.Context(), req, identityFrom(c))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "appointment booked", http.StatusCreated, appointment, nil)
	}
}

func (s *Server) handleAppointmentStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AppointmentStatusRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		appointment, err := s.AppointmentService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "appointment updated", http.StatusOK, appointment, nil)
	}
}
