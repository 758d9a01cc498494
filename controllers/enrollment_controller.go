package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
)

type EnrollRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

type ProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required,gte=0,lte=100"`
}

type EnrollmentView struct {
	EnrollmentID uuid.UUID  `json:"enrollment_id"`
	CourseID     uuid.UUID  `json:"course_id"`
	Title        string     `json:"title"`
	Progress     float64    `json:"progress"`
	EnrolledAt   time.Time  `json:"enrolled_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func EnrollUser(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", req.CourseID).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		serverError(c, "Error enrolling user", err)
		return
	}

	var count int64
	if err := db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", userID, req.CourseID).Count(&count).Error; err != nil {
		serverError(c, "Error enrolling user", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already enrolled in this course"})
		return
	}

	enrollment := models.Enrollment{UserID: userID, CourseID: req.CourseID}
	if err := db.Create(&enrollment).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already enrolled in this course"})
			return
		}
		serverError(c, "Error enrolling user", err)
		return
	}

	if course.InstructorID != userID {
		var student models.User
		if err := db.Select("id", "full_name").First(&student, "id = ?", userID).Error; err == nil {
			notify(db, course.InstructorID, "New enrollment",
				student.FullName+" enrolled in \""+course.Title+"\"",
				models.NotificationEnrollment, course.ID)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "User enrolled successfully",
		"enrollmentId": enrollment.ID,
	})
}

// GetUserEnrollments lists the courses of :userId. Access is checked by RequireSelfOrAdmin.
func GetUserEnrollments(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}

	var rows []EnrollmentView
	if err := getDB(c).Table("enrollments AS e").
		Select("e.id AS enrollment_id, e.course_id, c.title, e.progress, e.enrolled_at, e.completed_at").
		Joins("JOIN courses c ON c.id = e.course_id").
		Where("e.user_id = ?", userID).
		Order("e.enrolled_at DESC").
		Scan(&rows).Error; err != nil {
		serverError(c, "Error fetching enrollments", err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No enrollments found for this user"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func findEnrollment(c *gin.Context) (*models.Enrollment, bool) {
	id, ok := paramUUID(c, "enrollmentId")
	if !ok {
		return nil, false
	}

	var enrollment models.Enrollment
	if err := getDB(c).First(&enrollment, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
			return nil, false
		}
		serverError(c, "Error fetching enrollment", err)
		return nil, false
	}
	return &enrollment, true
}

// UpdateProgress sets the progress percentage. Reaching 100 marks the course completed.
func UpdateProgress(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress must be between 0 and 100"})
		return
	}

	enrollment, ok := findEnrollment(c)
	if !ok {
		return
	}
	if enrollment.UserID != userID {
		forbidden(c)
		return
	}

	updates := map[string]any{"progress": *req.Progress}
	if *req.Progress >= 100 {
		if enrollment.CompletedAt == nil {
			now := time.Now().UTC()
			updates["completed_at"] = &now
		}
	} else {
		updates["completed_at"] = nil
	}

	if err := db.Model(enrollment).Updates(updates).Error; err != nil {
		serverError(c, "Error updating progress", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Progress updated successfully",
		"progress": *req.Progress,
	})
}

func DeleteEnrollment(c *gin.Context) {
	enrollment, ok := findEnrollment(c)
	if !ok {
		return
	}
	if !canManage(c, enrollment.UserID) {
		forbidden(c)
		return
	}

	if err := getDB(c).Delete(enrollment).Error; err != nil {
		serverError(c, "Error deleting enrollment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enrollment deleted successfully"})
}
