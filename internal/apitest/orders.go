package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/pizzahouse/storefront/internal/orders"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func decodeOrder(row orderRow) models.Order {
	var o models.Order
	_ = json.Unmarshal(row.Doc, &o)
	o.Status = models.OrderStatus(row.Status)
	return o
}

func (s *Server) saveOrder(o models.Order) error {
	row := orderRow{ID: o.ID, UserID: o.UserID, Status: string(o.Status), CreatedAt: o.CreatedAt, Doc: mustMarshal(o)}
	return s.DB.Save(&row).Error
}

func (s *Server) createOrder(c echo.Context) error {
	uid := userID(c)

	var req struct {
		Items         []models.CartItem    `json:"items"`
		OrderType     models.OrderType     `json:"orderType"`
		DeliveryInfo  *models.DeliveryInfo `json:"deliveryInfo"`
		PickupInfo    *models.PickupInfo   `json:"pickupInfo"`
		PaymentMethod string               `json:"paymentMethod"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	if len(req.Items) == 0 {
		return jsonErr(c, http.StatusBadRequest, "order must contain items")
	}

	subtotal := decimal.Zero
	for _, it := range req.Items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	fee := decimal.Zero
	if req.OrderType == models.OrderTypeDelivery && req.DeliveryInfo != nil && req.DeliveryInfo.Zone != "" {
		var row zoneRow
		if err := s.DB.First(&row, "id = ?", req.DeliveryInfo.Zone).Error; err == nil {
			fee = decodeZone(row).DeliveryFee
		}
	}

	tax := subtotal.Mul(s.TaxRate).Round(2)
	id := uuid.NewString()
	order := models.Order{
		ID:            id,
		Number:        "PH-" + strings.ToUpper(id[:8]),
		UserID:        uid,
		Items:         req.Items,
		Status:        models.StatusPending,
		OrderType:     req.OrderType,
		DeliveryInfo:  req.DeliveryInfo,
		PickupInfo:    req.PickupInfo,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
		Totals: models.OrderTotals{
			Subtotal:    subtotal,
			DeliveryFee: fee,
			Tax:         tax,
			Total:       subtotal.Add(fee).Add(tax),
		},
	}
	if err := s.saveOrder(order); err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	// Checkout consumes the cart.
	if err := s.DB.Delete(&cartRow{}, "user_id = ?", uid).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, order)
}

func (s *Server) myOrders(c echo.Context) error {
	var rows []orderRow
	if err := s.DB.Order("created_at DESC").Find(&rows, "user_id = ?", userID(c)).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	out := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeOrder(row))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) allOrders(c echo.Context) error {
	var rows []orderRow
	if err := s.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	out := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeOrder(row))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) findOrder(c echo.Context) (*models.Order, error) {
	var row orderRow
	if err := s.DB.First(&row, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonErr(c, http.StatusNotFound, "order not found")
		}
		return nil, jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	order := decodeOrder(row)
	if role, _ := c.Get("role").(string); role != string(models.RoleAdmin) && order.UserID != userID(c) {
		return nil, jsonErr(c, http.StatusNotFound, "order not found")
	}
	return &order, nil
}

func (s *Server) getOrder(c echo.Context) error {
	order, err := s.findOrder(c)
	if order == nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) updateOrderStatus(c echo.Context) error {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	order, err := s.findOrder(c)
	if order == nil {
		return err
	}
	if verr := orders.Validate(order.Status, req.Status); verr != nil {
		return jsonErr(c, http.StatusConflict, verr.Error())
	}
	order.Status = req.Status
	if serr := s.saveOrder(*order); serr != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) cancelOrder(c echo.Context) error {
	order, err := s.findOrder(c)
	if order == nil {
		return err
	}
	if verr := orders.Validate(order.Status, models.StatusCancelled); verr != nil {
		return jsonErr(c, http.StatusConflict, verr.Error())
	}
	order.Status = models.StatusCancelled
	if serr := s.saveOrder(*order); serr != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) deleteOrder(c echo.Context) error {
	order, err := s.findOrder(c)
	if order == nil {
		return err
	}
	if derr := s.DB.Delete(&orderRow{}, "id = ?", order.ID).Error; derr != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusOK)
}
