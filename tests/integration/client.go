package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"wayfarer/internal/models"
)

// TestClient drives a running API instance. The suite only runs when
// WAYFARER_API_URL is set, so unit test runs stay hermetic.
type TestClient struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

// NewTestClient builds a client for the target instance, or skips the
// calling test when no instance is configured.
func NewTestClient(t *testing.T) *TestClient {
	baseURL := os.Getenv("WAYFARER_API_URL")
	if baseURL == "" {
		t.Skip("WAYFARER_API_URL not set, skipping integration test")
	}

	return &TestClient{
		BaseURL:  baseURL,
		Username: os.Getenv("WAYFARER_API_USER"),
		Password: os.Getenv("WAYFARER_API_PASSWORD"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RequireAuth skips the test unless credentials were configured.
func (c *TestClient) RequireAuth(t *testing.T) {
	if c.Username == "" {
		t.Skip("WAYFARER_API_USER not set, skipping authenticated test")
	}
}

type envelope struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}, authed bool) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.SetBasicAuth(c.Username, c.Password)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func (c *TestClient) decodeEnvelope(t *testing.T, resp *http.Response, wantStatus int) envelope {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	if resp.StatusCode != wantStatus {
		t.Fatalf("Expected status %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v. Body: %s", err, string(raw))
	}

	return env
}

// HealthCheck verifies the API is up.
func (c *TestClient) HealthCheck(t *testing.T) {
	resp := c.makeRequest(t, "GET", "/health", nil, false)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Health check failed with status %d", resp.StatusCode)
	}
}

// ListTours returns the public tour catalog.
func (c *TestClient) ListTours(t *testing.T) []models.Tour {
	resp := c.makeRequest(t, "GET", "/api/tours", nil, false)
	env := c.decodeEnvelope(t, resp, http.StatusOK)

	var tours []models.Tour
	if err := json.Unmarshal(env.Data, &tours); err != nil {
		t.Fatalf("Failed to decode tours: %v", err)
	}

	return tours
}

// ListExperiences returns the public experience catalog.
func (c *TestClient) ListExperiences(t *testing.T) []models.Experience {
	resp := c.makeRequest(t, "GET", "/api/experiences", nil, false)
	env := c.decodeEnvelope(t, resp, http.StatusOK)

	var experiences []models.Experience
	if err := json.Unmarshal(env.Data, &experiences); err != nil {
		t.Fatalf("Failed to decode experiences: %v", err)
	}

	return experiences
}

// CreateBooking books a tour as the authenticated user.
func (c *TestClient) CreateBooking(t *testing.T, req models.CreateBookingRequest) *models.BookingDetail {
	resp := c.makeRequest(t, "POST", "/api/bookings", req, true)
	env := c.decodeEnvelope(t, resp, http.StatusCreated)

	var data struct {
		Booking models.BookingDetail `json:"booking"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to decode created booking: %v", err)
	}

	return &data.Booking
}

// CreateExperienceBooking books an experience without credentials.
func (c *TestClient) CreateExperienceBooking(t *testing.T, req models.CreateExperienceBookingRequest) *models.BookingDetail {
	resp := c.makeRequest(t, "POST", "/api/experiences/bookings", req, false)
	env := c.decodeEnvelope(t, resp, http.StatusCreated)

	var data struct {
		Booking models.BookingDetail `json:"booking"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to decode created booking: %v", err)
	}

	return &data.Booking
}

// GetBooking reads one booking as the authenticated user.
func (c *TestClient) GetBooking(t *testing.T, id int64) *models.BookingDetail {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/bookings/%d", id), nil, true)
	env := c.decodeEnvelope(t, resp, http.StatusOK)

	var detail models.BookingDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("Failed to decode booking: %v", err)
	}

	return &detail
}

// CancelBooking cancels a booking and returns its final state.
func (c *TestClient) CancelBooking(t *testing.T, id int64) *models.BookingDetail {
	resp := c.makeRequest(t, "DELETE", fmt.Sprintf("/api/bookings/%d", id), nil, true)
	env := c.decodeEnvelope(t, resp, http.StatusOK)

	var detail models.BookingDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("Failed to decode cancelled booking: %v", err)
	}

	return &detail
}

// CancelBookingExpectConflict asserts that a cancel attempt is rejected.
func (c *TestClient) CancelBookingExpectConflict(t *testing.T, id int64) {
	resp := c.makeRequest(t, "DELETE", fmt.Sprintf("/api/bookings/%d", id), nil, true)
	c.decodeEnvelope(t, resp, http.StatusBadRequest)
}

// ListBookings lists the caller's bookings.
func (c *TestClient) ListBookings(t *testing.T) ([]models.BookingDetail, models.Pagination) {
	resp := c.makeRequest(t, "GET", "/api/bookings", nil, true)
	env := c.decodeEnvelope(t, resp, http.StatusOK)

	var records []models.BookingDetail
	if err := json.Unmarshal(env.Data, &records); err != nil {
		t.Fatalf("Failed to decode bookings list: %v", err)
	}

	return records, env.Pagination
}
