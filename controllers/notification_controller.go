package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/ws"
)

// notify stores a notification for userID and pushes it with the new unread count.
// Failures are logged; the triggering request still succeeds.
func notify(db *gorm.DB, userID uuid.UUID, title, message, notifType string, courseID uuid.UUID) {
	notif := models.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     notifType,
		CourseID: &courseID,
	}
	if err := db.Create(&notif).Error; err != nil {
		slog.Error("could not store notification", "user_id", userID, "type", notifType, "error", err)
		return
	}

	ws.H.SendJSON(userID.String(), map[string]any{
		"type":      notifType,
		"id":        notif.ID.String(),
		"title":     title,
		"message":   message,
		"course_id": courseID.String(),
	})
	pushBadge(db, userID)
}

func pushBadge(db *gorm.DB, userID uuid.UUID) {
	var count int64
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error; err != nil {
		slog.Error("could not count unread notifications", "user_id", userID, "error", err)
		return
	}
	ws.H.SendBadgeUpdate(userID.String(), count)
}

func GetNotifications(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var list []models.Notification
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		serverError(c, "Failed to fetch notifications", err)
		return
	}

	var unread int64
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread).Error; err != nil {
		serverError(c, "Failed to fetch notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         list,
		"unread_count": unread,
	})
}

func MarkNotificationAsRead(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	now := time.Now().UTC()
	res := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	if res.Error != nil {
		serverError(c, "Failed to update notification", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	pushBadge(db, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllAsRead(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error; err != nil {
		serverError(c, "Failed to mark all read", err)
		return
	}

	ws.H.SendBadgeUpdate(userID.String(), 0)
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
