package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/radical-ticket/internal/handler"
	"github.com/iliyamo/radical-ticket/internal/reservation"
	"github.com/iliyamo/radical-ticket/internal/store"
	"github.com/iliyamo/radical-ticket/internal/utils"
)

func request(e *echo.Echo, method, path, body, bearer string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRegisterRoutesAdminGuard(t *testing.T) {
	const secret = "admin-secret"
	e := echo.New()
	h := handler.NewTicketHandler(reservation.New(store.NewMemory()), 0)
	RegisterRoutes(e, h, Options{AdminSecret: secret})

	tok, err := utils.NewAccessToken(secret, "bench", utils.RoleAdmin, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if code := request(e, http.MethodPost, "/populate_tickets", "2", ""); code != http.StatusUnauthorized {
		t.Errorf("unauthenticated populate = %d", code)
	}
	if code := request(e, http.MethodPost, "/populate_tickets", "2", tok.Token); code != http.StatusOK {
		t.Errorf("admin populate = %d", code)
	}
	if code := request(e, http.MethodPost, "/clear_cache", "", ""); code != http.StatusUnauthorized {
		t.Errorf("unauthenticated clear = %d", code)
	}

	// Public routes stay open.
	if code := request(e, http.MethodGet, "/healthz", "", ""); code != http.StatusOK {
		t.Errorf("healthz = %d", code)
	}
	if code := request(e, http.MethodPost, "/reserve", `{"ticket_id":1,"res_email":"a@b.co"}`, ""); code != http.StatusOK {
		t.Errorf("reserve = %d", code)
	}
}

func TestRegisterRoutesReserveLimiter(t *testing.T) {
	e := echo.New()
	h := handler.NewTicketHandler(reservation.New(store.NewMemory()), 0)
	calls := 0
	limiter := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			calls++
			return c.NoContent(http.StatusTooManyRequests)
		}
	}
	RegisterRoutes(e, h, Options{ReserveLimiter: limiter})

	if code := request(e, http.MethodPost, "/reserve", `{"ticket_id":1}`, ""); code != http.StatusTooManyRequests {
		t.Errorf("reserve = %d", code)
	}
	if code := request(e, http.MethodPost, "/populate_tickets", "1", ""); code != http.StatusOK {
		t.Errorf("populate without admin secret = %d", code)
	}
	if calls != 1 {
		t.Errorf("limiter ran %d times, want only for /reserve", calls)
	}
}
