package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/e-learning-backend/models"
)

var errAlreadyInCart = errors.New("course is already in the cart")

type CartItemView struct {
	CartItemID  uuid.UUID `json:"cart_item_id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Price       float64   `json:"price"`
	AddedAt     time.Time `json:"added_at"`
}

// AddToCart puts a course in the caller's cart, creating the cart on first use.
func AddToCart(c *gin.Context) {
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

	var item models.CartItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Cart{UserID: userID}).Error; err != nil {
			return err
		}
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.CartItem{}).Where("cart_id = ? AND course_id = ?", cart.ID, req.CourseID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyInCart
		}

		item = models.CartItem{CartID: cart.ID, CourseID: req.CourseID}
		return tx.Create(&item).Error
	})
	if err != nil {
		if errors.Is(err, errAlreadyInCart) || isDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Course is already in the cart"})
			return
		}
		serverError(c, "Error adding course to cart", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Course added to cart successfully",
		"cartItemId": item.ID,
	})
}

func findCart(c *gin.Context, userID uuid.UUID) (*models.Cart, bool) {
	var cart models.Cart
	if err := getDB(c).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return nil, false
		}
		serverError(c, "Error fetching cart", err)
		return nil, false
	}
	return &cart, true
}

func GetCart(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	cart, ok := findCart(c, userID)
	if !ok {
		return
	}

	rows := []CartItemView{}
	if err := getDB(c).Table("cart_items AS ci").
		Select("ci.id AS cart_item_id, ci.course_id, c.title AS course_title, COALESCE(c.discount_price, c.price) AS price, ci.added_at").
		Joins("JOIN courses c ON c.id = ci.course_id").
		Where("ci.cart_id = ?", cart.ID).
		Order("ci.added_at ASC").
		Scan(&rows).Error; err != nil {
		serverError(c, "Error fetching cart items", err)
		return
	}

	var total float64
	for _, r := range rows {
		total += r.Price
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_id": cart.ID,
		"items":   rows,
		"total":   total,
	})
}

func RemoveFromCart(c *gin.Context) {
	db := getDB(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "cartItemId")
	if !ok {
		return
	}

	res := db.Where("id = ? AND cart_id IN (?)", id,
		db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{})
	if res.Error != nil {
		serverError(c, "Error removing course from cart", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course removed from cart successfully"})
}

func ClearCart(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	cart, ok := findCart(c, userID)
	if !ok {
		return
	}

	if err := getDB(c).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		serverError(c, "Error clearing cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
