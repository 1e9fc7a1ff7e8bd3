package apitest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pizzahouse/storefront/internal/models"
	"github.com/pizzahouse/storefront/internal/pricing"
	"golang.org/x/crypto/bcrypt"
)

// ZoneBox bounds a seeded zone's serviceable area for availability checks.
type ZoneBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (s *Server) SeedUser(t *testing.T, name, email, phone, password string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash seed password: %v", err)
	}
	row := userRow{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         string(role),
	}
	if err := s.DB.Create(&row).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return rowToUser(row)
}

func (s *Server) SeedProduct(t *testing.T, p models.Product) models.Product {
	t.Helper()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := productRow{ID: p.ID, Name: p.Name, Category: p.Category, Popular: p.Popular, Available: p.Available, Doc: mustMarshal(p)}
	if err := s.DB.Save(&row).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// SetProductAvailability flips a product on or off, e.g. to force the sync
// endpoint to drop its cart lines.
func (s *Server) SetProductAvailability(t *testing.T, productID string, available bool) {
	t.Helper()
	var row productRow
	if err := s.DB.First(&row, "id = ?", productID).Error; err != nil {
		t.Fatalf("seed availability: %v", err)
	}
	row.Available = available
	p := decodeProduct(row)
	p.Available = available
	row.Doc = mustMarshal(p)
	if err := s.DB.Save(&row).Error; err != nil {
		t.Fatalf("seed availability: %v", err)
	}
}

func (s *Server) SeedCategory(t *testing.T, cat models.Category) models.Category {
	t.Helper()
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if err := s.DB.Save(&categoryRow{ID: cat.ID, Doc: mustMarshal(cat)}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return cat
}

func (s *Server) SeedTopping(t *testing.T, topping models.Topping) models.Topping {
	t.Helper()
	if topping.ID == "" {
		topping.ID = uuid.NewString()
	}
	if err := s.DB.Save(&toppingRow{ID: topping.ID, Doc: mustMarshal(topping)}).Error; err != nil {
		t.Fatalf("seed topping: %v", err)
	}
	return topping
}

func (s *Server) SeedExtra(t *testing.T, extra models.ExtraItem) models.ExtraItem {
	t.Helper()
	if extra.ID == "" {
		extra.ID = uuid.NewString()
	}
	row := extraRow{ID: extra.ID, Category: extra.Category, ExtraType: extra.ExtraType, Doc: mustMarshal(extra)}
	if err := s.DB.Save(&row).Error; err != nil {
		t.Fatalf("seed extra: %v", err)
	}
	return extra
}

func (s *Server) SeedZone(t *testing.T, zone models.DeliveryZone, box ZoneBox) models.DeliveryZone {
	t.Helper()
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	row := zoneRow{
		ID:     zone.ID,
		Active: zone.Active,
		MinLat: box.MinLat,
		MaxLat: box.MaxLat,
		MinLng: box.MinLng,
		MaxLng: box.MaxLng,
		Doc:    mustMarshal(zone),
	}
	if err := s.DB.Save(&row).Error; err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	return zone
}

func (s *Server) SeedTimeSlot(t *testing.T, zoneID string, slot models.TimeSlot) models.TimeSlot {
	t.Helper()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if err := s.DB.Save(&slotRow{ID: slot.ID, ZoneID: zoneID, Doc: mustMarshal(slot)}).Error; err != nil {
		t.Fatalf("seed time slot: %v", err)
	}
	return slot
}

// SeedCartItem plants a server-side cart line, e.g. the remnants of a prior
// signed-in session.
func (s *Server) SeedCartItem(t *testing.T, uid string, item models.CartItem) {
	t.Helper()
	if item.ID == "" {
		item.ID = pricing.LineID(item.ProductID, item.Customization)
	}
	if err := s.DB.Create(&cartRow{UserID: uid, LineID: item.ID, Doc: mustMarshal(item)}).Error; err != nil {
		t.Fatalf("seed cart item: %v", err)
	}
}
