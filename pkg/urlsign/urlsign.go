// Package urlsign firma y verifica enlaces públicos de duración limitada.
//
// Contrato del query string:
//
//	?expires=<unix_ts>&signature=<hex(HMAC_SHA256(secret, "<path>:<expires>"))>
//
// El path debe ser exactamente el que se solicitará después (sin query string);
// no existe revocación: un enlace es válido hasta su expiración.
package urlsign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/billing-api/internal/domain"
)

// Vigencias por defecto.
const (
	DefaultValidity  = 7 * 24 * time.Hour
	DeliveryValidity = 30 * 24 * time.Hour
)

// Link valor derivado de (path, expires); no se persiste.
type Link struct {
	Path      string
	Expires   int64
	Signature string
}

// Query devuelve "expires=...&signature=...".
func (l Link) Query() string {
	return "expires=" + strconv.FormatInt(l.Expires, 10) + "&signature=" + l.Signature
}

// Signer calcula y valida firmas con una clave secreta. Es seguro para uso concurrente.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// New construye el firmante. now puede ser nil (usa time.Now).
func New(secret string, now func() time.Time) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("urlsign: secret vacío")
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{secret: []byte(secret), now: now}, nil
}

// Sign firma path con expiración now + validity.
func (s *Signer) Sign(path string, validity time.Duration) Link {
	expires := s.now().UTC().Add(validity).Unix()
	return Link{Path: path, Expires: expires, Signature: s.signature(path, expires)}
}

// URL devuelve la URL absoluta firmada (baseURL + path + query).
func (s *Signer) URL(baseURL, path string, validity time.Duration) string {
	return strings.TrimRight(baseURL, "/") + path + "?" + s.Sign(path, validity).Query()
}

// Verify indica si la firma es válida y no ha expirado. Nunca falla con error.
func (s *Signer) Verify(path string, expires int64, signature string) bool {
	return s.Check(path, expires, signature) == nil
}

// Check igual que Verify pero distingue la causa (ErrLinkExpired / ErrSignatureInvalid) para el log.
func (s *Signer) Check(path string, expires int64, signature string) error {
	if s.now().UTC().Unix() > expires {
		return domain.ErrLinkExpired
	}
	expected := s.signature(path, expires)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}

// CheckQuery valida los parámetros crudos "expires" y "signature" de una petición.
func (s *Signer) CheckQuery(path string, query url.Values) error {
	return s.CheckRaw(path, query.Get("expires"), query.Get("signature"))
}

// CheckRaw valida expires/signature tal como llegan en el query string.
func (s *Signer) CheckRaw(path, rawExpires, signature string) error {
	if rawExpires == "" || signature == "" {
		return domain.ErrSignatureInvalid
	}
	expires, err := strconv.ParseInt(rawExpires, 10, 64)
	if err != nil {
		return domain.ErrSignatureInvalid
	}
	return s.Check(path, expires, signature)
}

func (s *Signer) signature(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(path + ":" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
