package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
)

type CourseRefRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

type WishlistView struct {
	WishlistID  uuid.UUID `json:"wishlist_id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	AddedAt     time.Time `json:"added_at"`
}

// courseExists answers 404 when courseID names no course.
func courseExists(c *gin.Context, courseID uuid.UUID) bool {
	var count int64
	if err := getDB(c).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		serverError(c, "Error fetching course", err)
		return false
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return false
	}
	return true
}

func AddToWishlist(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CourseRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !courseExists(c, req.CourseID) {
		return
	}

	var count int64
	if err := db.Model(&models.WishlistItem{}).Where("user_id = ? AND course_id = ?", userID, req.CourseID).Count(&count).Error; err != nil {
		serverError(c, "Error adding course to wishlist", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Course is already in wishlist"})
		return
	}

	item := models.WishlistItem{UserID: userID, CourseID: req.CourseID}
	if err := db.Create(&item).Error; err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Course is already in wishlist"})
			return
		}
		serverError(c, "Error adding course to wishlist", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Course added to wishlist",
		"wishlistId": item.ID,
	})
}

func GetWishlist(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}

	var rows []WishlistView
	if err := getDB(c).Table("wishlist AS w").
		Select("w.id AS wishlist_id, w.course_id, c.title AS course_title, w.added_at").
		Joins("JOIN courses c ON c.id = w.course_id").
		Where("w.user_id = ?", userID).
		Order("w.added_at DESC").
		Scan(&rows).Error; err != nil {
		serverError(c, "Error fetching wishlist items", err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No items found in wishlist for this user"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func RemoveFromWishlist(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "wishlistId")
	if !ok {
		return
	}

	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		serverError(c, "Error removing course from wishlist", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course removed from wishlist"})
}

func CheckWishlist(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	courseID, ok := paramUUID(c, "courseId")
	if !ok {
		return
	}

	var item models.WishlistItem
	if err := getDB(c).Where("user_id = ? AND course_id = ?", userID, courseID).First(&item).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course is not in wishlist"})
			return
		}
		serverError(c, "Error checking wishlist item", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Course is in wishlist",
		"wishlistId": item.ID,
	})
}
