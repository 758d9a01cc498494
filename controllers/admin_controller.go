package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-learning-backend/models"
)

type TopCourse struct {
	CourseID    string  `json:"course_id"`
	Title       string  `json:"title"`
	Enrollments int64   `json:"enrollments"`
	AvgRating   float64 `json:"avg_rating"`
}

// AdminDashboard returns platform totals and the most enrolled courses.
func AdminDashboard(c *gin.Context) {
	db := getDB(c)

	counts := gin.H{}
	for name, model := range map[string]any{
		"users":       &models.User{},
		"courses":     &models.Course{},
		"enrollments": &models.Enrollment{},
		"reviews":     &models.Review{},
	} {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			serverError(c, "Error loading dashboard", err)
			return
		}
		counts[name] = n
	}

	var top []TopCourse
	if err := db.Raw(`
		SELECT c.id AS course_id,
		       c.title,
		       COUNT(DISTINCT e.id) AS enrollments,
		       COALESCE(AVG(r.rating), 0) AS avg_rating
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		LEFT JOIN reviews r ON r.course_id = c.id
		GROUP BY c.id, c.title
		ORDER BY enrollments DESC, c.title ASC
		LIMIT 5
	`).Scan(&top).Error; err != nil {
		serverError(c, "Error loading dashboard", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Welcome to the admin dashboard",
		"user":        c.GetString("email"),
		"counts":      counts,
		"top_courses": top,
	})
}
