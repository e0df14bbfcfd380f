package urlsign_test

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

const testSecret = "test-signing-secret"

// reloj controlable para los tests
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newSigner(t *testing.T, c *clock) *urlsign.Signer {
	t.Helper()
	s, err := urlsign.New(testSecret, c.now)
	require.NoError(t, err)
	return s
}

// Vector fijo: HMAC_SHA256("test-signing-secret", "/public/quote/123/pdf:1700000000").
func TestSign_VectorExacto(t *testing.T) {
	c := &clock{t: time.Unix(1700000000, 0).Add(-urlsign.DefaultValidity)}
	s := newSigner(t, c)

	link := s.Sign("/public/quote/123/pdf", urlsign.DefaultValidity)
	assert.Equal(t, int64(1700000000), link.Expires)
	assert.Equal(t, "7562cf6223fd973c873191a1fe51b460597998750316b07d491d520407abf106", link.Signature)
	assert.Equal(t, "expires=1700000000&signature="+link.Signature, link.Query())
}

func TestVerify_RoundTripYExpiracion(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	s := newSigner(t, c)
	path := "/public/invoice/abc/pdf"

	link := s.Sign(path, urlsign.DeliveryValidity)
	assert.True(t, s.Verify(path, link.Expires, link.Signature), "recién firmado debe verificar")

	c.t = c.t.Add(urlsign.DeliveryValidity)
	assert.True(t, s.Verify(path, link.Expires, link.Signature), "en el segundo exacto de expiración aún es válido")

	c.t = c.t.Add(time.Second)
	assert.False(t, s.Verify(path, link.Expires, link.Signature))
	assert.ErrorIs(t, s.Check(path, link.Expires, link.Signature), domain.ErrLinkExpired)
}

func TestVerify_CualquierMutacionFalla(t *testing.T) {
	c := &clock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	s := newSigner(t, c)
	path := "/public/receipt/42/pdf"
	link := s.Sign(path, time.Hour)

	flip := func(s string) string {
		b := []byte(s)
		if b[0] == 'a' {
			b[0] = 'b'
		} else {
			b[0] = 'a'
		}
		return string(b)
	}

	assert.False(t, s.Verify(path+"/", link.Expires, link.Signature), "trailing slash")
	assert.False(t, s.Verify("/public/receipt/43/pdf", link.Expires, link.Signature), "otro recurso")
	assert.False(t, s.Verify(path, link.Expires+1, link.Signature), "expires alterado")
	assert.False(t, s.Verify(path, link.Expires, flip(link.Signature)), "firma alterada")
	assert.ErrorIs(t, s.Check(path, link.Expires, flip(link.Signature)), domain.ErrSignatureInvalid)
}

func TestVerify_OtraClaveFalla(t *testing.T) {
	c := &clock{t: time.Now()}
	s := newSigner(t, c)
	other, err := urlsign.New("otra-clave", c.now)
	require.NoError(t, err)

	link := s.Sign("/x", time.Hour)
	assert.False(t, other.Verify("/x", link.Expires, link.Signature))
}

func TestCheckQuery(t *testing.T) {
	c := &clock{t: time.Now()}
	s := newSigner(t, c)
	link := s.Sign("/public/quote/1/pdf", time.Hour)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(link.Expires, 10))
	q.Set("signature", link.Signature)
	assert.NoError(t, s.CheckQuery("/public/quote/1/pdf", q))

	assert.ErrorIs(t, s.CheckQuery("/public/quote/1/pdf", url.Values{}), domain.ErrSignatureInvalid)
	assert.ErrorIs(t, s.CheckRaw("/public/quote/1/pdf", "no-es-numero", link.Signature), domain.ErrSignatureInvalid)
}

func TestURL(t *testing.T) {
	c := &clock{t: time.Unix(1700000000, 0).Add(-urlsign.DefaultValidity)}
	s := newSigner(t, c)
	got := s.URL("https://api.example.com/", "/public/quote/123/pdf", urlsign.DefaultValidity)
	assert.Equal(t,
		"https://api.example.com/public/quote/123/pdf?expires=1700000000&signature=7562cf6223fd973c873191a1fe51b460597998750316b07d491d520407abf106",
		got)
}

func TestNew_SecretVacio(t *testing.T) {
	_, err := urlsign.New("", nil)
	assert.Error(t, err)
}
