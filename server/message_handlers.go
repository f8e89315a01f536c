package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/carefront/models"
	"github.com/techagentng/carefront/server/response"
	"github.com/techagentng/carefront/services"
)

const idempotencyHeader = "Idempotency-Key"

func (s *Server) handleSubmitMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SubmitMessageRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		s.submit(c, req, services.AllowAnonymous)
	}
}

// handleAppendMessage adds a turn to an existing conversation.
func (s *Server) handleAppendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SubmitMessageRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		req.ConversationID = c.Param("conversationId")
		s.submit(c, req, services.RequireIdentity)
	}
}

func (s *Server) submit(c *gin.Context, req models.SubmitMessageRequest, policy services.SubmitPolicy) {
	msg, replayed, err := s.MessageService.SubmitIdempotent(c.Request.Context(), c.GetHeader(idempotencyHeader), req, identityFrom(c), policy)
	if err != nil {
		response.HandleErrors(c, err)
		return
	}
	if replayed {
		response.JSON(c, "message already received", http.StatusOK, msg, nil)
		return
	}
	response.JSON(c, "message sent", http.StatusCreated, msg, nil)
}

func (s *Server) handleListMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		mine := c.Query("mine") == "true"
		messages, err := s.MessageService.List(c.Request.Context(), c.Query("search"), mine, identityFrom(c))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "retrieved messages", http.StatusOK, messages, nil)
	}
}

func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversations, err := s.MessageService.ListConversations(c.Request.Context(), c.Query("search"), identityFrom(c))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "retrieved conversations", http.StatusOK, conversations, nil)
	}
}

func (s *Server) handleDeleteMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.MessageService.Remove(c.Request.Context(), id, identityFrom(c)); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "message deleted", http.StatusOK, models.DeleteMessageResponse{OK: true, ID: id}, nil)
	}
}

func (s *Server) handleReplyMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ReplyRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		msg, err := s.MessageService.Reply(c.Request.Context(), c.Param("id"), req.Reply, identityFrom(c))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "reply sent", http.StatusOK, msg, nil)
	}
}

func (s *Server) handleMessageStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StatusRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		msg, err := s.MessageService.MarkStatus(c.Request.Context(), c.Param("id"), models.MessageStatus(req.Status))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "status updated", http.StatusOK, msg, nil)
	}
}
