package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
)

type CreateReviewRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	Rating   int       `json:"rating" binding:"required,min=1,max=5"`
	Comment  string    `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

type ReviewView struct {
	ReviewID  uuid.UUID `json:"review_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func CreateReview(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id and a rating between 1 and 5 are required"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", req.CourseID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		serverError(c, "Error creating review", err)
		return
	}

	review := models.Review{
		CourseID: req.CourseID,
		UserID:   userID,
		Rating:   req.Rating,
		Comment:  strings.TrimSpace(req.Comment),
	}
	if err := db.Create(&review).Error; err != nil {
		serverError(c, "Error creating review", err)
		return
	}

	if course.InstructorID != userID {
		var author models.User
		if err := db.Select("id", "full_name").First(&author, "id = ?", userID).Error; err == nil {
			notify(db, course.InstructorID, "New review",
				fmt.Sprintf("%s rated \"%s\" %d/5", author.FullName, course.Title, review.Rating),
				models.NotificationReview, course.ID)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Review created successfully",
		"reviewId": review.ID,
	})
}

func GetCourseReviews(c *gin.Context) {
	courseID, ok := paramUUID(c, "courseId")
	if !ok {
		return
	}

	var rows []ReviewView
	if err := getDB(c).Table("reviews AS r").
		Select("r.id AS review_id, r.user_id, u.full_name AS user_name, r.rating, r.comment, r.created_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.course_id = ?", courseID).
		Order("r.created_at DESC").
		Scan(&rows).Error; err != nil {
		serverError(c, "Error fetching reviews", err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reviews found for this course"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func findReview(c *gin.Context) (*models.Review, bool) {
	id, ok := paramUUID(c, "reviewId")
	if !ok {
		return nil, false
	}

	var review models.Review
	if err := getDB(c).First(&review, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return nil, false
		}
		serverError(c, "Error fetching review", err)
		return nil, false
	}
	if !canManage(c, review.UserID) {
		forbidden(c)
		return nil, false
	}
	return &review, true
}

func UpdateReview(c *gin.Context) {
	db := getDB(c)

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	review, ok := findReview(c)
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Comment != nil {
		updates["comment"] = strings.TrimSpace(*req.Comment)
	}
	if len(updates) > 0 {
		if err := db.Model(review).Updates(updates).Error; err != nil {
			serverError(c, "Error updating review", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully"})
}

func DeleteReview(c *gin.Context) {
	review, ok := findReview(c)
	if !ok {
		return
	}

	if err := getDB(c).Delete(review).Error; err != nil {
		serverError(c, "Error deleting review", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
