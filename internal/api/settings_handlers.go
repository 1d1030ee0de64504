package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"huparfum-backend/internal/db"
)

func (s *Server) listSettings(c *gin.Context) {
	list, err := s.settings.Settings(c.Query("category"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

func (s *Server) getSetting(c *gin.Context) {
	setting, err := s.settings.Setting(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFoundError(c, msgSettingNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

type settingRequest struct {
	Category string          `json:"category"`
	Value    json.RawMessage `json:"value" binding:"required"`
}

func (s *Server) putSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	setting := &db.WebsiteSetting{
		Key:      c.Param("key"),
		Category: req.Category,
		Value:    req.Value,
	}
	if err := s.settings.PutSetting(c.Request.Context(), setting); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

func (s *Server) listFeatures(c *gin.Context) {
	flags, err := s.settings.FeatureFlags()
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": flags})
}

func (s *Server) getFeature(c *gin.Context) {
	flag, err := s.settings.FeatureFlag(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFoundError(c, msgFlagNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feature": flag})
}

type featureRequest struct {
	Status db.FlagStatus   `json:"status" binding:"required"`
	Config json.RawMessage `json:"config"`
}

func (s *Server) putFeature(c *gin.Context) {
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.IsValid() {
		badRequest(c, msgInvalidBody)
		return
	}
	flag := &db.FeatureFlag{
		FeatureName: c.Param("name"),
		Status:      req.Status,
		Config:      req.Config,
	}
	if err := s.settings.PutFeatureFlag(c.Request.Context(), flag); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feature": flag})
}
