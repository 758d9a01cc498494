package controllers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
	"github.com/vnkhanh/e-learning-backend/storage"
)

const maxContentSize = 50 << 20

type contentKind struct {
	contentType string
	mime        string
}

var contentKinds = map[string]contentKind{
	".mp3":  {models.ContentAudio, "audio/mpeg"},
	".pdf":  {models.ContentDocument, "application/pdf"},
	".mp4":  {models.ContentVideo, "video/mp4"},
	".webm": {models.ContentVideo, "video/webm"},
}

type ContentRequest struct {
	CourseID     uuid.UUID `json:"course_id" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	ContentType  string    `json:"content_type" binding:"required,oneof=video audio document text"`
	ContentURL   string    `json:"content_url"`
	ContentText  string    `json:"content_text"`
	Duration     int       `json:"duration" binding:"gte=0"`
	ContentOrder int       `json:"content_order" binding:"gte=0"`
}

type UpdateContentRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1"`
	ContentType  *string `json:"content_type" binding:"omitempty,oneof=video audio document text"`
	ContentURL   *string `json:"content_url"`
	ContentText  *string `json:"content_text"`
	Duration     *int    `json:"duration" binding:"omitempty,gte=0"`
	ContentOrder *int    `json:"content_order" binding:"omitempty,gte=0"`
}

// ContentController serves /api/content.
type ContentController struct {
	storage storage.Storage
}

func NewContentController(s storage.Storage) *ContentController {
	return &ContentController{storage: s}
}

// ownedCourse loads courseID and checks the caller may change its content.
func ownedCourse(c *gin.Context, courseID uuid.UUID) (*models.Course, bool) {
	var course models.Course
	if err := getDB(c).First(&course, "id = ?", courseID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return nil, false
		}
		serverError(c, "Error fetching course", err)
		return nil, false
	}
	if !canManage(c, course.InstructorID) {
		forbidden(c)
		return nil, false
	}
	return &course, true
}

// findContent loads the content named by contentId and checks ownership of its course.
func findContent(c *gin.Context) (*models.CourseContent, bool) {
	id, ok := paramUUID(c, "contentId")
	if !ok {
		return nil, false
	}

	var content models.CourseContent
	if err := getDB(c).First(&content, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return nil, false
		}
		serverError(c, "Error fetching content", err)
		return nil, false
	}
	if _, ok := ownedCourse(c, content.CourseID); !ok {
		return nil, false
	}
	return &content, true
}

func (cc *ContentController) Add(c *gin.Context) {
	var input ContentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := ownedCourse(c, input.CourseID); !ok {
		return
	}

	content := models.CourseContent{
		CourseID:     input.CourseID,
		Title:        strings.TrimSpace(input.Title),
		ContentType:  input.ContentType,
		ContentURL:   input.ContentURL,
		ContentText:  input.ContentText,
		Duration:     input.Duration,
		ContentOrder: input.ContentOrder,
	}
	if err := getDB(c).Create(&content).Error; err != nil {
		serverError(c, "Error adding content", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Content added successfully",
		"contentId": content.ID,
		"content":   content,
	})
}

func (cc *ContentController) ListByCourse(c *gin.Context) {
	courseID, ok := paramUUID(c, "courseId")
	if !ok {
		return
	}

	var contents []models.CourseContent
	if err := getDB(c).
		Where("course_id = ?", courseID).
		Order("content_order ASC, created_at ASC").
		Find(&contents).Error; err != nil {
		serverError(c, "Error fetching content", err)
		return
	}
	if len(contents) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No content found for this course"})
		return
	}
	c.JSON(http.StatusOK, contents)
}

func (cc *ContentController) Update(c *gin.Context) {
	db := getDB(c)
	content, ok := findContent(c)
	if !ok {
		return
	}

	var input UpdateContentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.ContentType != nil {
		updates["content_type"] = *input.ContentType
	}
	if input.ContentURL != nil {
		updates["content_url"] = *input.ContentURL
	}
	if input.ContentText != nil {
		updates["content_text"] = *input.ContentText
	}
	if input.Duration != nil {
		updates["duration"] = *input.Duration
	}
	if input.ContentOrder != nil {
		updates["content_order"] = *input.ContentOrder
	}

	if len(updates) > 0 {
		if err := db.Model(content).Updates(updates).Error; err != nil {
			serverError(c, "Error updating content", err)
			return
		}
		if err := db.First(content, "id = ?", content.ID).Error; err != nil {
			serverError(c, "Error updating content", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Content updated successfully",
		"content": content,
	})
}

func (cc *ContentController) Delete(c *gin.Context) {
	content, ok := findContent(c)
	if !ok {
		return
	}

	if err := getDB(c).Delete(content).Error; err != nil {
		serverError(c, "Error deleting content", err)
		return
	}
	if err := storage.DeleteURL(c.Request.Context(), cc.storage, content.ContentURL); err != nil {
		slog.Warn("could not delete content file", "url", content.ContentURL, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

// Upload stores a lesson file and creates its content row. Audio gets its
// duration measured, PDFs get their text extracted.
func (cc *ContentController) Upload(c *gin.Context) {
	if cc.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": storage.ErrDisabled.Error()})
		return
	}

	courseID, err := uuid.Parse(c.PostForm("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course_id"})
		return
	}
	if _, ok := ownedCourse(c, courseID); !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file attached"})
		return
	}
	if file.Size > maxContentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be at most 50MB"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	kind, ok := contentKinds[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type " + ext})
		return
	}

	order := 0
	if v := c.PostForm("content_order"); v != "" {
		if order, err = strconv.Atoi(v); err != nil || order < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content_order"})
			return
		}
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read file"})
		return
	}

	content := models.CourseContent{
		CourseID:     courseID,
		Title:        title,
		ContentType:  kind.contentType,
		ContentOrder: order,
	}

	switch kind.contentType {
	case models.ContentAudio:
		dur, err := services.MP3Duration(bytes.NewReader(data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mp3 file"})
			return
		}
		content.Duration = dur
	case models.ContentDocument:
		text, err := services.PDFText(data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pdf file"})
			return
		}
		content.ContentText = text
	}

	url, err := cc.storage.Upload(c.Request.Context(), storage.ObjectKey("course-content", file.Filename), bytes.NewReader(data), kind.mime)
	if err != nil {
		serverError(c, "Error uploading file", err)
		return
	}
	content.ContentURL = url

	if err := getDB(c).Create(&content).Error; err != nil {
		if derr := storage.DeleteURL(c.Request.Context(), cc.storage, url); derr != nil {
			slog.Warn("could not delete orphaned upload", "url", url, "error", derr)
		}
		serverError(c, "Error adding content", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Content uploaded successfully",
		"contentId": content.ID,
		"content":   content,
	})
}
