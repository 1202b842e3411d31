package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"wayfarer/internal/booking"
	"wayfarer/internal/settings"
)

func TestBookingLabelPrefersReference(t *testing.T) {
	d := testDetail()
	assert.Equal(t, "#42", bookingLabel(d))

	ref := "EXP-1756600000000-A1B2C3"
	d.Reference = &ref
	assert.Equal(t, ref, bookingLabel(d))
}

func TestRenderUserConfirmation(t *testing.T) {
	msg := RenderUserConfirmation(testDetail(), testSettings())

	assert.Equal(t, "Booking request received - Desert Safari", msg.Subject)
	assert.Contains(t, msg.Text, "Hi Aida Nur,")
	assert.Contains(t, msg.Text, "Party size: 3")
	assert.Contains(t, msg.Text, "Total: 450.50")
	assert.Contains(t, msg.HTML, `<a href="https://wayfarer.example">Wayfarer</a>`)
}

func TestRenderAdminNotification(t *testing.T) {
	msg := RenderAdminNotification(testDetail(), testSettings())

	assert.Equal(t, "New booking #42 - Desert Safari", msg.Subject)
	assert.Contains(t, msg.Text, "Customer: Aida Nur (aida@example.com)")
	assert.Contains(t, msg.Text, "https://admin.wayfarer.example")
}

func TestRenderStatusUpdateSubjects(t *testing.T) {
	d := testDetail()

	d.Status = booking.StatusApproved
	assert.Equal(t, "Booking Confirmed - Desert Safari", RenderStatusUpdate(d, testSettings()).Subject)

	d.Status = booking.StatusConfirmed
	assert.Equal(t, "Booking Confirmed - Desert Safari", RenderStatusUpdate(d, testSettings()).Subject)

	d.Status = booking.StatusCancelled
	assert.Equal(t, "Booking Cancelled - Desert Safari", RenderStatusUpdate(d, testSettings()).Subject)

	d.Status = booking.StatusPending
	assert.Equal(t, "Booking Update - Desert Safari", RenderStatusUpdate(d, testSettings()).Subject)
}

func TestRenderStatusUpdateRefundNote(t *testing.T) {
	d := testDetail()
	d.Status = booking.StatusCancelled
	d.PaymentStatus = booking.PaymentRefunded

	msg := RenderStatusUpdate(d, testSettings())
	assert.Contains(t, msg.Text, "A refund of 450.50 has been recorded")

	// no refund note when the payment was never completed
	d.PaymentStatus = booking.PaymentPending
	msg = RenderStatusUpdate(d, testSettings())
	assert.NotContains(t, msg.Text, "refund")
}

func TestDispatcherBookingCreatedReturnsLinks(t *testing.T) {
	disp := NewDispatcher(NewMailer(SMTPConfig{}), NewMailer(SMTPConfig{}), stubSettings{testSettings()})

	links := disp.BookingCreated(context.Background(), testDetail())

	assert.Contains(t, links.UserWhatsAppURL, "phone=442079460018")
	assert.Contains(t, links.AdminWhatsAppURL, "phone=77005550011")
}

type stubSettings struct{ s settings.Settings }

func (s stubSettings) Current() settings.Settings { return s.s }
