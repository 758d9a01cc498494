package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/storage"
	"github.com/vnkhanh/e-learning-backend/utils"
)

const maxImageSize = 5 << 20

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type CourseRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Price         float64    `json:"price" binding:"gte=0"`
	DiscountPrice *float64   `json:"discount_price" binding:"omitempty,gte=0"`
	CategoryID    *uuid.UUID `json:"category_id"`
	Level         string     `json:"level"`
	Language      string     `json:"language"`
	Status        string     `json:"status" binding:"omitempty,oneof=draft published archived"`
}

type UpdateCourseRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=1"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price" binding:"omitempty,gte=0"`
	DiscountPrice *float64   `json:"discount_price" binding:"omitempty,gte=0"`
	CategoryID    *uuid.UUID `json:"category_id"`
	Level         *string    `json:"level"`
	Language      *string    `json:"language"`
	Status        *string    `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// CourseController serves /api/courses. Images go through the configured storage.
type CourseController struct {
	storage storage.Storage
}

func NewCourseController(s storage.Storage) *CourseController {
	return &CourseController{storage: s}
}

func instructorPreview(db *gorm.DB) *gorm.DB {
	return db.Select("id, full_name, email")
}

// findCourse loads the course named by the courseId parameter and answers 404 when missing.
func findCourse(c *gin.Context, param string) (*models.Course, bool) {
	id, ok := paramUUID(c, param)
	if !ok {
		return nil, false
	}

	var course models.Course
	if err := getDB(c).First(&course, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return nil, false
		}
		serverError(c, "Error fetching course", err)
		return nil, false
	}
	return &course, true
}

func (cc *CourseController) Create(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input CourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	exists, err := categoryExists(c, input.CategoryID)
	if err != nil {
		serverError(c, "Error creating course", err)
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	course := models.Course{
		Title:         title,
		Slug:          utils.Slugify(title),
		Description:   input.Description,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		CategoryID:    input.CategoryID,
		InstructorID:  userID,
		Level:         input.Level,
		Language:      input.Language,
		Status:        models.CourseDraft,
	}
	if input.Status != "" {
		course.Status = input.Status
	}

	if err := db.Create(&course).Error; err != nil {
		serverError(c, "Error creating course", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Course created successfully",
		"courseId": course.ID,
		"course":   course,
	})
}

func (cc *CourseController) List(c *gin.Context) {
	db := getDB(c)
	query := db.Model(&models.Course{})

	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	page, limit := pagination(c)
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		serverError(c, "Error fetching courses", err)
		return
	}

	var courses []models.Course
	if err := query.
		Preload("Category").
		Preload("Instructor", instructorPreview).
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		serverError(c, "Error fetching courses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       courses,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

func (cc *CourseController) Get(c *gin.Context) {
	id, ok := paramUUID(c, "courseId")
	if !ok {
		return
	}

	var course models.Course
	if err := getDB(c).
		Preload("Category").
		Preload("Instructor", instructorPreview).
		First(&course, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		serverError(c, "Error fetching course", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (cc *CourseController) Update(c *gin.Context) {
	db := getDB(c)
	course, ok := findCourse(c, "courseId")
	if !ok {
		return
	}
	if !canManage(c, course.InstructorID) {
		forbidden(c)
		return
	}

	var input UpdateCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		updates["title"] = title
		updates["slug"] = utils.Slugify(title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.DiscountPrice != nil {
		updates["discount_price"] = *input.DiscountPrice
	}
	if input.CategoryID != nil {
		exists, err := categoryExists(c, input.CategoryID)
		if err != nil {
			serverError(c, "Error updating course", err)
			return
		}
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Level != nil {
		updates["level"] = *input.Level
	}
	if input.Language != nil {
		updates["language"] = *input.Language
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := db.Model(course).Updates(updates).Error; err != nil {
			serverError(c, "Error updating course", err)
			return
		}
		if err := db.First(course, "id = ?", course.ID).Error; err != nil {
			serverError(c, "Error updating course", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Course updated successfully",
		"course":  course,
	})
}

func (cc *CourseController) Delete(c *gin.Context) {
	db := getDB(c)
	course, ok := findCourse(c, "courseId")
	if !ok {
		return
	}
	if !canManage(c, course.InstructorID) {
		forbidden(c)
		return
	}

	var contentURLs []string
	db.Model(&models.CourseContent{}).
		Where("course_id = ? AND content_url <> ''", course.ID).
		Pluck("content_url", &contentURLs)

	if err := db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&models.CourseContent{}, &models.Enrollment{}, &models.Review{},
			&models.WishlistItem{}, &models.CartItem{},
		} {
			if err := tx.Where("course_id = ?", course.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(course).Error
	}); err != nil {
		serverError(c, "Error deleting course", err)
		return
	}

	// stored files are removed after the rows are gone; a failure only leaves an orphan object
	for _, u := range append(contentURLs, course.ImageURL) {
		if err := storage.DeleteURL(c.Request.Context(), cc.storage, u); err != nil {
			slog.Warn("could not delete stored file", "url", u, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// UploadImage stores a multipart "image" and sets it as the course image.
func (cc *CourseController) UploadImage(c *gin.Context) {
	if cc.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": storage.ErrDisabled.Error()})
		return
	}

	db := getDB(c)
	course, ok := findCourse(c, "courseId")
	if !ok {
		return
	}
	if !canManage(c, course.InstructorID) {
		forbidden(c)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image attached"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be at most 5MB"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !imageTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read image"})
		return
	}
	defer f.Close()

	url, err := cc.storage.Upload(c.Request.Context(), storage.ObjectKey("course-images", file.Filename), f, contentType)
	if err != nil {
		serverError(c, "Error uploading image", err)
		return
	}

	old := course.ImageURL
	if err := db.Model(course).Update("image_url", url).Error; err != nil {
		serverError(c, "Error updating course", err)
		return
	}
	if err := storage.DeleteURL(c.Request.Context(), cc.storage, old); err != nil {
		slog.Warn("could not delete previous course image", "url", old, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image uploaded successfully",
		"image_url": url,
	})
}
