package apitest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func decodeZone(row zoneRow) models.DeliveryZone {
	var z models.DeliveryZone
	_ = json.Unmarshal(row.Doc, &z)
	return z
}

func (s *Server) listZones(c echo.Context) error {
	var rows []zoneRow
	if err := s.DB.Find(&rows, "active = ?", true).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	zones := make([]models.DeliveryZone, 0, len(rows))
	for _, row := range rows {
		zones = append(zones, decodeZone(row))
	}
	return c.JSON(http.StatusOK, zones)
}

func (s *Server) zoneTimeSlots(c echo.Context) error {
	var rows []slotRow
	if err := s.DB.Find(&rows, "zone_id = ?", c.Param("id")).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	slots := make([]models.TimeSlot, 0, len(rows))
	for _, row := range rows {
		var slot models.TimeSlot
		_ = json.Unmarshal(row.Doc, &slot)
		slots = append(slots, slot)
	}
	return c.JSON(http.StatusOK, slots)
}

func (s *Server) checkAvailability(c echo.Context) error {
	var req struct {
		Coordinates models.Coordinates `json:"coordinates"`
		OrderAmount decimal.Decimal    `json:"orderAmount"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var rows []zoneRow
	if err := s.DB.Find(&rows, "active = ?", true).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	for _, row := range rows {
		lat, lng := req.Coordinates.Lat, req.Coordinates.Lng
		if lat < row.MinLat || lat > row.MaxLat || lng < row.MinLng || lng > row.MaxLng {
			continue
		}
		zone := decodeZone(row)
		if req.OrderAmount.LessThan(zone.MinOrderAmount) {
			return c.JSON(http.StatusOK, models.DeliveryAvailability{
				Available: false,
				Reason:    "below minimum order amount",
			})
		}
		return c.JSON(http.StatusOK, models.DeliveryAvailability{Available: true, Zone: &zone})
	}

	return c.JSON(http.StatusOK, models.DeliveryAvailability{
		Available: false,
		Reason:    "outside delivery area",
	})
}

func (s *Server) createZone(c echo.Context) error {
	var zone models.DeliveryZone
	if err := c.Bind(&zone); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	row := zoneRow{ID: zone.ID, Active: zone.Active, Doc: mustMarshal(zone)}
	if err := s.DB.Create(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, zone)
}

func (s *Server) updateZone(c echo.Context) error {
	var zone models.DeliveryZone
	if err := c.Bind(&zone); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var row zoneRow
	if err := s.DB.First(&row, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonErr(c, http.StatusNotFound, "zone not found")
		}
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	zone.ID = row.ID
	row.Active = zone.Active
	row.Doc = mustMarshal(zone)
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, zone)
}

func (s *Server) deleteZone(c echo.Context) error {
	if err := s.DB.Delete(&zoneRow{}, "id = ?", c.Param("id")).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	if err := s.DB.Delete(&slotRow{}, "zone_id = ?", c.Param("id")).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) updateTimeSlot(c echo.Context) error {
	var slot models.TimeSlot
	if err := c.Bind(&slot); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	row := slotRow{ID: slot.ID, ZoneID: c.Param("id"), Doc: mustMarshal(slot)}
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, slot)
}
