package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"huparfum-backend/internal/db"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.store.Products(c.Query("category"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		notFoundError(c, msgProductNotFound)
		return
	}
	product, err := s.store.ProductByID(id)
	if err != nil {
		notFoundError(c, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

type productRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	product := &db.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if err := s.store.CreateProduct(product); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		notFoundError(c, msgProductNotFound)
		return
	}
	product, err := s.store.ProductByID(id)
	if err != nil {
		notFoundError(c, msgProductNotFound)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidBody)
		return
	}
	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	product.Category = req.Category
	product.ImageURL = req.ImageURL
	if err := s.store.SaveProduct(product); err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		notFoundError(c, msgProductNotFound)
		return
	}
	if err := s.store.DeleteProduct(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			notFoundError(c, msgProductNotFound)
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
