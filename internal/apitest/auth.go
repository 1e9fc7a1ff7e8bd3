package apitest

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func rowToUser(r userRow) models.User {
	return models.User{ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone, Role: models.Role(r.Role)}
}

func (s *Server) register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var fields []fieldError
	for _, f := range []struct{ name, value string }{
		{"name", req.Name}, {"email", req.Email}, {"password", req.Password}, {"phone", req.Phone},
	} {
		if f.value == "" {
			fields = append(fields, fieldError{Field: f.name, Message: f.name + " is required"})
		}
	}
	if len(fields) > 0 {
		return jsonFieldErrs(c, http.StatusBadRequest, "missing required fields", fields)
	}

	var existing userRow
	if err := s.DB.First(&existing, "email = ?", req.Email).Error; err == nil {
		return jsonErr(c, http.StatusBadRequest, "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	row := userRow{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         string(models.RoleCustomer),
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}

	token, err := s.issueToken(row)
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, map[string]any{"token": token, "user": rowToUser(row)})
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var row userRow
	if err := s.DB.First(&row, "email = ?", req.Email).Error; err != nil {
		return jsonErr(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)) != nil {
		return jsonErr(c, http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.issueToken(row)
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]any{"token": token, "user": rowToUser(row)})
}

func (s *Server) me(c echo.Context) error {
	var row userRow
	if err := s.DB.First(&row, "id = ?", userID(c)).Error; err != nil {
		return jsonErr(c, http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": rowToUser(row)})
}

func (s *Server) updateDetails(c echo.Context) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var row userRow
	if err := s.DB.First(&row, "id = ?", userID(c)).Error; err != nil {
		return jsonErr(c, http.StatusUnauthorized, "unauthorized")
	}
	if req.Name != "" {
		row.Name = req.Name
	}
	if req.Email != "" {
		row.Email = req.Email
	}
	if req.Phone != "" {
		row.Phone = req.Phone
	}
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": rowToUser(row)})
}

func (s *Server) updatePassword(c echo.Context) error {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}

	var row userRow
	if err := s.DB.First(&row, "id = ?", userID(c)).Error; err != nil {
		return jsonErr(c, http.StatusUnauthorized, "unauthorized")
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return jsonErr(c, http.StatusBadRequest, "current password is incorrect")
	}
	if len(req.NewPassword) < 6 {
		return jsonFieldErrs(c, http.StatusBadRequest, "password too short",
			[]fieldError{{Field: "newPassword", Message: "must be at least 6 characters"}})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	row.PasswordHash = string(hash)
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) listUsers(c echo.Context) error {
	var rows []userRow
	if err := s.DB.Find(&rows).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, rowToUser(r))
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c echo.Context) error {
	var row userRow
	if err := s.DB.First(&row, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonErr(c, http.StatusNotFound, "user not found")
		}
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, rowToUser(row))
}

func (s *Server) updateUser(c echo.Context) error {
	var req models.User
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	var row userRow
	if err := s.DB.First(&row, "id = ?", c.Param("id")).Error; err != nil {
		return jsonErr(c, http.StatusNotFound, "user not found")
	}
	if req.Name != "" {
		row.Name = req.Name
	}
	if req.Email != "" {
		row.Email = req.Email
	}
	if req.Phone != "" {
		row.Phone = req.Phone
	}
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, rowToUser(row))
}

func (s *Server) deleteUser(c echo.Context) error {
	if err := s.DB.Delete(&userRow{}, "id = ?", c.Param("id")).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) setUserRole(c echo.Context) error {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonErr(c, http.StatusBadRequest, "invalid body")
	}
	if req.Role != string(models.RoleCustomer) && req.Role != string(models.RoleAdmin) {
		return jsonErr(c, http.StatusBadRequest, "unknown role")
	}
	var row userRow
	if err := s.DB.First(&row, "id = ?", c.Param("id")).Error; err != nil {
		return jsonErr(c, http.StatusNotFound, "user not found")
	}
	row.Role = req.Role
	if err := s.DB.Save(&row).Error; err != nil {
		return jsonErr(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, rowToUser(row))
}
