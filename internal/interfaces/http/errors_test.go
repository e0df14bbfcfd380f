package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
)

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("get quote: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("%w: quote is SENT", domain.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{fmt.Errorf("%w: %w", domain.ErrTransient, domain.ErrNumberCollision), http.StatusServiceUnavailable, "TRANSIENT"},
		{domain.ErrSignatureInvalid, http.StatusForbidden, "INVALID_SIGNATURE"},
		{domain.ErrLinkExpired, http.StatusForbidden, "LINK_EXPIRED"},
		{errors.New("pool cerrado"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tc.err) })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		assert.Contains(t, string(body), `"code":"`+tc.code+`"`)
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, errors.New("password=secreto")) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "secreto")
}

func TestBindJSON_ValidationMessages(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto.CreateInvoiceRequest
		if err := bindJSON(c, &in); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(http.StatusNoContent)
	})

	send := func(body string) (int, string) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	status, body := send(`{"contact_id":"nope","items":[],"due_date":"17/10/2026"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "contact_id no es un UUID")
	assert.Contains(t, body, "due_date debe tener formato 2006-01-02")

	status, _ = send(`{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = send(`{"contact_id":"11111111-1111-1111-1111-111111111111",
		"items":[{"description":"Hosting","quantity":1,"unit_price":"10"}],"due_date":"2026-10-20"}`)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestPathID(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		invalid bool
	}{
		{raw: "6f9619ff-8b86-d011-b42d-00c04fc964ff", want: "6f9619ff-8b86-d011-b42d-00c04fc964ff"},
		{raw: "6F9619FF-8B86-D011-B42D-00C04FC964FF", want: "6f9619ff-8b86-d011-b42d-00c04fc964ff"},
		{raw: "123", invalid: true},
		{raw: "no-es-uuid", invalid: true},
	}
	for _, tc := range cases {
		var (
			got    string
			gotErr error
		)
		app := fiber.New()
		app.Get("/x/:id", func(c *fiber.Ctx) error {
			got, gotErr = pathID(c)
			return nil
		})
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/x/"+tc.raw, nil), -1)
		require.NoError(t, err)

		if tc.invalid {
			assert.ErrorIs(t, gotErr, domain.ErrNotFound, tc.raw)
			continue
		}
		require.NoError(t, gotErr, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}
