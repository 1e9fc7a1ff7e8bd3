package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"gorm.io/gorm"
)

func decodeProduct(row productRow) models.Product {
	var p models.Product
	_ = json.Unmarshal(row.Doc, &p)
	return p
}

func (s *Server) listProducts(c echo.Context) error {
	q := s.DB.Model(&productRow{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	var rows []productRow
	if err := q.Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	search := strings.ToLower(c.QueryParam("search"))
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		if search != "" && !strings.Contains(strings.ToLower(row.Name), search) {
			continue
		}
		products = append(products, decodeProduct(row))
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) searchProducts(c echo.Context) error {
	query := strings.ToLower(c.QueryParam("query"))
	var rows []productRow
	if err := s.DB.Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	products := make([]models.Product, 0)
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Name), query) {
			products = append(products, decodeProduct(row))
		}
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) popularProducts(c echo.Context) error {
	var rows []productRow
	if err := s.DB.Find(&rows, "popular = ?", true).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, decodeProduct(row))
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c echo.Context) error {
	var row productRow
	if err := s.DB.First(&row, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonErr(c, http.StatusNotFound, "product not found")
		}
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, decodeProduct(row))
}

func (s *Server) listCategories(c echo.Context) error {
	var rows []categoryRow
	if err := s.DB.Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		var cat models.Category
		_ = json.Unmarshal(row.Doc, &cat)
		categories = append(categories, cat)
	}
	return c.JSON(http.StatusOK, categories)
}

func (s *Server) listToppings(c echo.Context) error {
	var rows []toppingRow
	if err := s.DB.Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	toppings := make([]models.Topping, 0, len(rows))
	for _, row := range rows {
		var t models.Topping
		_ = json.Unmarshal(row.Doc, &t)
		toppings = append(toppings, t)
	}
	return c.JSON(http.StatusOK, toppings)
}

func (s *Server) listExtras(c echo.Context) error {
	q := s.DB.Model(&extraRow{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if extraType := c.QueryParam("extraType"); extraType != "" {
		q = q.Where("extra_type = ?", extraType)
	}
	var rows []extraRow
	if err := q.Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	extras := make([]models.ExtraItem, 0, len(rows))
	for _, row := range rows {
		var e models.ExtraItem
		_ = json.Unmarshal(row.Doc, &e)
		extras = append(extras, e)
	}
	return c.JSON(http.StatusOK, extras)
}
