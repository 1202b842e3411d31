package notify

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/booking"
	"wayfarer/internal/models"
	"wayfarer/internal/settings"
)

func testSettings() settings.Settings {
	return settings.Settings{
		SiteName:        "Wayfarer",
		FrontendURL:     "https://wayfarer.example",
		AdminBaseURL:    "https://admin.wayfarer.example",
		AdminEmail:      "ops@wayfarer.example",
		AdminWhatsApp:   "+7 (700) 555-00-11",
		WhatsAppBaseURL: "https://wa.me",
	}
}

func testDetail() *models.BookingDetail {
	wa := "+44 20 7946 0018"
	return &models.BookingDetail{
		Booking: models.Booking{
			ID:             42,
			Kind:           booking.KindTour,
			TravelDate:     time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
			Quantity:       3,
			TotalPrice:     450.50,
			PaymentMethod:  "whatsapp",
			PaymentStatus:  booking.PaymentPending,
			Status:         booking.StatusPending,
			WhatsAppNumber: &wa,
		},
		ProductTitle:  "Desert Safari",
		CustomerName:  "Aida Nur",
		CustomerEmail: "aida@example.com",
	}
}

func TestBuildWhatsAppLink(t *testing.T) {
	link := BuildWhatsAppLink("https://wa.me/", "+7 (700) 123-45-67", "hello & welcome")

	u, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "77001234567", u.Query().Get("phone"))
	assert.Equal(t, "hello & welcome", u.Query().Get("text"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "77001234567", normalizePhone("+7 (700) 123-45-67"))
	assert.Equal(t, "442079460018", normalizePhone("+44 20 7946 0018"))
	assert.Equal(t, "", normalizePhone("no digits here"))
}

func TestUserConfirmationLink(t *testing.T) {
	d := testDetail()
	link := UserConfirmationLink(d, testSettings())

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "442079460018", u.Query().Get("phone"))
	assert.Contains(t, u.Query().Get("text"), "Aida Nur")
	assert.Contains(t, u.Query().Get("text"), "Desert Safari")
	assert.Contains(t, u.Query().Get("text"), "450.50")
}

func TestUserConfirmationLinkWithoutNumber(t *testing.T) {
	d := testDetail()
	d.WhatsAppNumber = nil

	assert.Empty(t, UserConfirmationLink(d, testSettings()))
}

func TestAdminNotificationLink(t *testing.T) {
	d := testDetail()
	link := AdminNotificationLink(d, testSettings())

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "77005550011", u.Query().Get("phone"))
	assert.Contains(t, u.Query().Get("text"), "#42")
	assert.Contains(t, u.Query().Get("text"), "aida@example.com")

	s := testSettings()
	s.AdminWhatsApp = ""
	assert.Empty(t, AdminNotificationLink(d, s))
}
