package apitest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"gorm.io/gorm"
)

func defaultPrinterSettings() models.PrinterSettings {
	return models.PrinterSettings{
		IsEnabled:         true,
		HeaderText:        "Pizza House",
		FooterText:        "Thank you for your order!",
		PrintCustomerCopy: true,
		PrintKitchenCopy:  true,
		PrintOnNewOrder:   true,
	}
}

func (s *Server) loadPrinterSettings() (models.PrinterSettings, error) {
	var row settingsRow
	if err := s.DB.First(&row, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultPrinterSettings(), nil
		}
		return models.PrinterSettings{}, err
	}
	var settings models.PrinterSettings
	if err := json.Unmarshal(row.Doc, &settings); err != nil {
		return models.PrinterSettings{}, err
	}
	return settings, nil
}

func (s *Server) getPrinterSettings(c echo.Context) error {
	settings, err := s.loadPrinterSettings()
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *Server) updatePrinterSettings(c echo.Context) error {
	var settings models.PrinterSettings
	if err := c.Bind(&settings); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	row := settingsRow{ID: 1, Doc: mustMarshal(settings)}
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *Server) testPrinter(c echo.Context) error {
	settings, err := s.loadPrinterSettings()
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	if !settings.IsEnabled {
		return jsonErr(c, http.StatusConflict, "printer is disabled")
	}
	s.mu.Lock()
	s.tested++
	s.mu.Unlock()
	return c.NoContent(http.StatusOK)
}

func (s *Server) printOrder(c echo.Context) error {
	var receipt models.Receipt
	if err := c.Bind(&receipt); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	s.prints = append(s.prints, receipt)
	s.mu.Unlock()
	return c.NoContent(http.StatusOK)
}
