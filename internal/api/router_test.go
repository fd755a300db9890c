package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/api/handler"
	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository/memory"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, capacity int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	allocator, err := service.NewSlotAllocator(context.Background(), memory.NewSlotRepository(), capacity)
	require.NoError(t, err)

	sessionRepo := memory.NewSessionRepository()
	voter := service.NewConfidenceVoter(2, 5*time.Second, 0.4, 0)
	normalizer := domain.NewPlateNormalizer(4, domain.DefaultSubstitutions())

	hub := handler.NewHub()
	go hub.Run()

	parking := service.NewParkingService(allocator, sessionRepo, 5.0, 10.0).
		WithTracker(voter).
		WithNotifier(hub)
	payment := service.NewPaymentService(sessionRepo).WithNotifier(hub)
	detection := service.NewDetectionService(normalizer, voter, parking)

	return SetupRouter(parking, payment, detection, nil, normalizer, hub)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestManualEntryAndConflict(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusCreated, w.Code)

	var session domain.VehicleSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "KA01AB1234", session.Plate)
	assert.Equal(t, 1, session.SlotNumber)

	// The same plate again is a conflict on the manual path.
	w = doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestManualEntryRejectsBadPlate(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "!!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/entry", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManualExitFlow(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/exit", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusOK, w.Code)

	var session domain.VehicleSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, domain.SessionExited, session.Status)
	assert.Equal(t, 10.0, session.Charge.ValueOrZero())

	// Exiting again is not found.
	w = doJSON(t, r, http.MethodPost, "/api/exit", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntryWhenFull(t *testing.T) {
	r := newTestRouter(t, 1)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "MH12CD5678"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSlotsEndpoint(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/slots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Slots    []domain.Slot `json:"slots"`
		Capacity int           `json:"capacity"`
		Free     int           `json:"free"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Capacity)
	assert.Equal(t, 2, resp.Free)
	assert.Equal(t, domain.SlotOccupied, resp.Slots[0].Status)
}

func TestObservationsConfirmAfterQuorum(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/observations", domain.ObservationDTO{PlateText: "KA01AB1234", Confidence: 0.9})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/observations", domain.ObservationDTO{PlateText: "KA01AB1234", Confidence: 0.9})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                `json:"status"`
		Event  *domain.ConfirmedEvent `json:"event"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp.Status)
	require.NotNil(t, resp.Event)
	assert.Equal(t, domain.EventEntry, resp.Event.Kind)
}

func TestSessionLookupAndNotFound(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusCreated, w.Code)
	var session domain.VehicleSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/sessions/%d", session.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/sessions/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/sessions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPinIssueAndPaymentFlow(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/entry", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusCreated, w.Code)
	var session domain.VehicleSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	// PIN before exit is a conflict.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sessions/%d/pin", session.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/exit", domain.PlateRequestDTO{Plate: "KA01AB1234"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sessions/%d/pin", session.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var pinResp struct {
		PIN string `json:"pin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pinResp))
	require.Regexp(t, `^[0-9]{6}$`, pinResp.PIN)

	wrong := "000000"
	if pinResp.PIN == wrong {
		wrong = "000001"
	}
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sessions/%d/payment", session.ID), domain.VerifyPaymentDTO{PIN: wrong})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sessions/%d/payment", session.ID), domain.VerifyPaymentDTO{PIN: pinResp.PIN})
	require.Equal(t, http.StatusOK, w.Code)
	var paid domain.VehicleSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)

	// Paying again conflicts.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/sessions/%d/payment", session.ID), domain.VerifyPaymentDTO{PIN: pinResp.PIN})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLPRRouteAbsentWithoutClient(t *testing.T) {
	r := newTestRouter(t, 3)

	w := doJSON(t, r, http.MethodPost, "/api/lpr/process-image", domain.LPRRequestDTO{ImageBase64: "aGk="})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
