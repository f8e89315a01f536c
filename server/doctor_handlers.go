package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
	"github.com/techagentng/carefront/server/response"
)

func (s *Server) handleListDoctors() gin.HandlerFunc {
	return func(c *gin.Context) {
		doctors, err := s.DoctorService.ListDoctors(c.Request.Context(), c.Query("search"))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "retrieved doctors", http.StatusOK, doctors, nil)
	}
}

// handleCreateDoctor accepts JSON, or a multipart form with an optional
// "photo" file.
func (s *Server) handleCreateDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateDoctorRequest
		var photo io.Reader

		if strings.HasPrefix(c.ContentType(), "multipart/") {
			if err := bindForm(c, &req); err != nil {
				response.HandleErrors(c, err)
				return
			}
			fh, err := c.FormFile("photo")
			if err != nil && err != http.ErrMissingFile {
				response.HandleErrors(c, errs.Validation("photo could not be read"))
				return
			}
			if fh != nil {
				f, err := fh.Open()
				if err != nil {
					response.HandleErrors(c, errs.Validation("photo could not be read"))
					return
				}
				defer f.Close()
				photo = f
			}
		} else if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}

		doctor, err := s.DoctorService.CreateDoctor(c.Request.Context(), req, photo)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "doctor created", http.StatusCreated, doctor, nil)
	}
}
