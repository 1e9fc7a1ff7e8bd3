package apitest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/pizzahouse/storefront/internal/pricing"
	"gorm.io/gorm"
)

func (s *Server) cartItems(uid string) ([]models.CartItem, error) {
	var rows []cartRow
	if err := s.DB.Order("id").Find(&rows, "user_id = ?", uid).Error; err != nil {
		return nil, err
	}
	items := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		var it models.CartItem
		if err := json.Unmarshal(row.Doc, &it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *Server) respondCart(c echo.Context, uid string) error {
	items, err := s.cartItems(uid)
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, models.Cart{Items: items})
}

func (s *Server) getCart(c echo.Context) error {
	return s.respondCart(c, userID(c))
}

func (s *Server) addCartItem(c echo.Context) error {
	uid := userID(c)

	var item models.CartItem
	if err := c.Bind(&item); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	if item.ProductID == "" || item.Quantity < 1 {
		return jsonErr(c, http.StatusBadRequest, "productId and quantity>0 required")
	}

	var product productRow
	if err := s.DB.First(&product, "id = ?", item.ProductID).Error; err != nil {
		return jsonErr(c, http.StatusNotFound, "product not found")
	}
	if !product.Available {
		return jsonErr(c, http.StatusConflict, "product is not available")
	}
	if item.ID == "" {
		item.ID = pricing.LineID(item.ProductID, item.Customization)
	}

	var row cartRow
	err := s.DB.First(&row, "user_id = ? AND line_id = ?", uid, item.ID).Error
	switch {
	case err == nil:
		var existing models.CartItem
		if uerr := json.Unmarshal(row.Doc, &existing); uerr != nil {
			return jsonErr(c, http.StatusInternalServerError, "internal error")
		}
		existing.Quantity += item.Quantity
		row.Doc = mustMarshal(existing)
		if serr := s.DB.Save(&row).Error; serr != nil {
			return jsonErr(c, http.StatusInternalServerError, "internal error")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = cartRow{UserID: uid, LineID: item.ID, Doc: mustMarshal(item)}
		if cerr := s.DB.Create(&row).Error; cerr != nil {
			return jsonErr(c, http.StatusInternalServerError, "internal error")
		}
	default:
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	return s.respondCart(c, uid)
}

func (s *Server) updateCartItem(c echo.Context) error {
	uid := userID(c)

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var row cartRow
	if err := s.DB.First(&row, "user_id = ? AND line_id = ?", uid, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonErr(c, http.StatusNotFound, "item not found")
		}
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	if req.Quantity <= 0 {
		if err := s.DB.Delete(&row).Error; err != nil {
			return jsonErr(c, http.StatusInternalServerError, "internal error")
		}
		return s.respondCart(c, uid)
	}

	var item models.CartItem
	if err := json.Unmarshal(row.Doc, &item); err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	item.Quantity = uint(req.Quantity)
	row.Doc = mustMarshal(item)
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return s.respondCart(c, uid)
}

func (s *Server) removeCartItem(c echo.Context) error {
	uid := userID(c)

	res := s.DB.Delete(&cartRow{}, "user_id = ? AND line_id = ?", uid, c.Param("id"))
	if res.Error != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return jsonErr(c, http.StatusNotFound, "item not found")
	}
	return s.respondCart(c, uid)
}

func (s *Server) clearCart(c echo.Context) error {
	if err := s.DB.Delete(&cartRow{}, "user_id = ?", userID(c)).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusOK)
}

// syncCart replaces the server cart with the submitted one. Lines whose
// product is unknown or no longer available are dropped, and kept lines are
// repriced from the current catalog.
func (s *Server) syncCart(c echo.Context) error {
	uid := userID(c)

	var submitted models.Cart
	if err := c.Bind(&submitted); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	if err := s.DB.Delete(&cartRow{}, "user_id = ?", uid).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	for _, item := range submitted.Items {
		var row productRow
		if err := s.DB.First(&row, "id = ?", item.ProductID).Error; err != nil {
			continue
		}
		if !row.Available {
			continue
		}
		if item.Quantity < 1 {
			continue
		}
		product := decodeProduct(row)
		item.UnitPrice = pricing.UnitPrice(product, item.Customization)
		if item.ID == "" {
			item.ID = pricing.LineID(item.ProductID, item.Customization)
		}
		if err := s.DB.Create(&cartRow{UserID: uid, LineID: item.ID, Doc: mustMarshal(item)}).Error; err != nil {
			return jsonErr(c, http.StatusInternalServerError, "internal error")
		}
	}

	return s.respondCart(c, uid)
}
