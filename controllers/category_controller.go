package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/middleware"
	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/utils"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func CreateCategory(c *gin.Context) {
	db := getDB(c)

	var input CategoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}
	slugValue := utils.Slugify(name)

	// name or slug already used
	var count int64
	if err := db.Model(&models.Category{}).
		Where("LOWER(name) = ? OR slug = ?", strings.ToLower(name), slugValue).
		Count(&count).Error; err != nil {
		serverError(c, "Error creating category", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	category := models.Category{
		Name:        name,
		Slug:        slugValue,
		Description: strings.TrimSpace(input.Description),
	}
	if id, ok := middleware.CurrentUserID(c); ok {
		category.CreatedBy = &id
	}

	if err := db.Create(&category).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		serverError(c, "Error creating category", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": category,
	})
}

func GetCategories(c *gin.Context) {
	db := getDB(c)

	query := db.Model(&models.Category{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		serverError(c, "Error fetching categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func GetCategoryByID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := getDB(c).First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		serverError(c, "Error fetching category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func UpdateCategory(c *gin.Context) {
	db := getDB(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input CategoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		serverError(c, "Error updating category", err)
		return
	}

	slugValue := utils.Slugify(name)
	var count int64
	if err := db.Model(&models.Category{}).
		Where("(LOWER(name) = ? OR slug = ?) AND id <> ?", strings.ToLower(name), slugValue, id).
		Count(&count).Error; err != nil {
		serverError(c, "Error updating category", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	category.Name = name
	category.Slug = slugValue
	category.Description = strings.TrimSpace(input.Description)
	if uid, ok := middleware.CurrentUserID(c); ok {
		category.UpdatedBy = &uid
	}

	if err := db.Save(&category).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		serverError(c, "Error updating category", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Category updated successfully",
		"category": category,
	})
}

func DeleteCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	res := getDB(c).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		serverError(c, "Error deleting category", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// categoryExists is used by course create/update to reject dangling category ids.
func categoryExists(c *gin.Context, id *uuid.UUID) (bool, error) {
	if id == nil {
		return true, nil
	}
	var count int64
	err := getDB(c).Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error
	return count > 0, err
}
