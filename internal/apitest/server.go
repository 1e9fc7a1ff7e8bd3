// Package apitest runs an in-memory Pizza House backend so the storefront
// client can be exercised over real HTTP in tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	Phone        string
	PasswordHash string
	Role         string
}

type productRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Category  string
	Popular   bool
	Available bool
	Doc       []byte
}

type categoryRow struct {
	ID  string `gorm:"primaryKey"`
	Doc []byte
}

type toppingRow struct {
	ID  string `gorm:"primaryKey"`
	Doc []byte
}

type extraRow struct {
	ID        string `gorm:"primaryKey"`
	Category  string
	ExtraType string
	Doc       []byte
}

type cartRow struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"`
	UserID string `gorm:"uniqueIndex:idx_user_line"`
	LineID string `gorm:"uniqueIndex:idx_user_line"`
	Doc    []byte
}

type zoneRow struct {
	ID     string `gorm:"primaryKey"`
	Active bool
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
	Doc    []byte
}

type slotRow struct {
	ID     string `gorm:"primaryKey"`
	ZoneID string `gorm:"index"`
	Doc    []byte
}

type orderRow struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Status    string
	CreatedAt time.Time
	Doc       []byte
}

type settingsRow struct {
	ID  uint `gorm:"primaryKey"`
	Doc []byte
}

// Server is the test double. Prints records every receipt the printer
// endpoints received, for assertions.
type Server struct {
	URL    string
	DB     *gorm.DB
	Secret []byte

	TaxRate decimal.Decimal

	mu      sync.Mutex
	prints  []models.Receipt
	tested  int
	e       *echo.Echo
	backend *httptest.Server
}

// New starts the backend on a loopback listener and tears it down with the
// test.
func New(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// One connection keeps everything on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&userRow{}, &productRow{}, &categoryRow{}, &toppingRow{}, &extraRow{},
		&cartRow{}, &zoneRow{}, &slotRow{}, &orderRow{}, &settingsRow{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	s := &Server{
		DB:      db,
		Secret:  []byte("apitest-secret"),
		TaxRate: decimal.RequireFromString("0.08"),
	}
	s.e = echo.New()
	s.e.HideBanner = true
	s.routes()

	s.backend = httptest.NewServer(s.e)
	s.URL = s.backend.URL
	t.Cleanup(func() {
		s.backend.Close()
		sqlDB.Close()
	})
	return s
}

func (s *Server) routes() {
	e := s.e

	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)
	e.GET("/auth/me", s.me, s.requireAuth)
	e.PUT("/auth/updatedetails", s.updateDetails, s.requireAuth)
	e.PUT("/auth/updatepassword", s.updatePassword, s.requireAuth)

	e.GET("/products", s.listProducts)
	e.GET("/products/search", s.searchProducts)
	e.GET("/products/popular", s.popularProducts)
	e.GET("/products/:id", s.getProduct)
	e.GET("/categories", s.listCategories)
	e.GET("/toppings", s.listToppings)
	e.GET("/extras", s.listExtras)

	cart := e.Group("/cart", s.requireAuth)
	cart.GET("", s.getCart)
	cart.POST("/items", s.addCartItem)
	cart.PUT("/items/:id", s.updateCartItem)
	cart.DELETE("/items/:id", s.removeCartItem)
	cart.DELETE("", s.clearCart)
	cart.PUT("/sync", s.syncCart)

	e.GET("/delivery-zones", s.listZones)
	e.GET("/delivery-zones/:id/time-slots", s.zoneTimeSlots)
	e.POST("/delivery-zones/check-availability", s.checkAvailability)
	e.POST("/delivery-zones", s.createZone, s.requireAuth, s.requireAdmin)
	e.PUT("/delivery-zones/:id", s.updateZone, s.requireAuth, s.requireAdmin)
	e.DELETE("/delivery-zones/:id", s.deleteZone, s.requireAuth, s.requireAdmin)
	e.PUT("/delivery-zones/:id/time-slots", s.updateTimeSlot, s.requireAuth, s.requireAdmin)

	orders := e.Group("/orders", s.requireAuth)
	orders.POST("", s.createOrder)
	orders.GET("", s.myOrders)
	orders.GET("/admin/orders", s.allOrders, s.requireAdmin)
	orders.GET("/:id", s.getOrder)
	orders.GET("/:id/tracking", s.getOrder)
	orders.PUT("/:id/status", s.updateOrderStatus, s.requireAdmin)
	orders.POST("/:id/cancel", s.cancelOrder)
	orders.DELETE("/:id", s.deleteOrder)

	printer := e.Group("/printer-settings", s.requireAuth, s.requireAdmin)
	printer.GET("", s.getPrinterSettings)
	printer.PUT("", s.updatePrinterSettings)
	printer.POST("/test", s.testPrinter)
	printer.POST("/print-order", s.printOrder)
	printer.POST("/print-update", s.printOrder)

	admin := e.Group("/admin/users", s.requireAuth, s.requireAdmin)
	admin.GET("", s.listUsers)
	admin.GET("/:id", s.getUser)
	admin.PUT("/:id", s.updateUser)
	admin.DELETE("/:id", s.deleteUser)
	admin.PUT("/:id/role", s.setUserRole)
}

type serverClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(u userRow) (string, error) {
	claims := serverClaims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			return jsonErr(c, http.StatusUnauthorized, "unauthorized")
		}

		var claims serverClaims
		tkn, err := jwt.ParseWithClaims(auth[len(prefix):], &claims, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.Secret, nil
		})
		if err != nil || !tkn.Valid {
			return jsonErr(c, http.StatusUnauthorized, "unauthorized")
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != string(models.RoleAdmin) {
			return jsonErr(c, http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

func jsonErr(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"message": message})
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func jsonFieldErrs(c echo.Context, code int, message string, fields []fieldError) error {
	return c.JSON(code, map[string]any{"message": message, "fieldErrors": fields})
}

func mustMarshal(v any) []byte {
	buf, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return buf
}

// Prints is everything the printer endpoints received so far.
func (s *Server) Prints() []models.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Receipt, len(s.prints))
	copy(out, s.prints)
	return out
}

// TestPrints counts test-page requests.
func (s *Server) TestPrints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tested
}
