package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huparfum-backend/internal/auth"
	"huparfum-backend/internal/db"
	"huparfum-backend/internal/logger"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}

	if _, err := s.store.UserByEmail(req.Email); err == nil {
		badRequest(c, msgEmailTaken)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(c, err)
		return
	}
	user := &db.User{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: hash,
	}
	if err := s.store.CreateUser(user); err != nil {
		// The unique phone index is the only constraint left to trip here.
		badRequest(c, msgPhoneTaken)
		return
	}

	if token, err := s.jwt.VerificationToken(user.Email); err == nil {
		if err := s.mail.Verification(user.Email, user.Name, token); err != nil {
			logger.NotifyFailure("email", err, zap.String("email", user.Email))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	user, err := s.store.UserByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}
	token, err := s.jwt.LoginToken(user.ID, auth.TokenUser)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	admin, err := s.store.AdminByEmail(req.Email)
	if err != nil || !auth.CheckPassword(admin.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}
	token, err := s.jwt.LoginToken(admin.ID, auth.TokenAdmin)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "admin": admin})
}

func (s *Server) verifyEmail(c *gin.Context) {
	claims, err := s.jwt.Verify(c.Query("token"), auth.TokenVerification)
	if err != nil {
		badRequest(c, msgInvalidVerifyToken)
		return
	}
	if err := s.store.MarkEmailVerified(claims.Email); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFoundError(c, msgUserNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}
