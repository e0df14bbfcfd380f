package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/billing-api/internal/domain"
)

// linkChecker lo implementa *urlsign.Signer.
type linkChecker interface {
	CheckRaw(path, rawExpires, signature string) error
}

// linkObserver contabiliza rechazos (opcional).
type linkObserver interface {
	LinkRejected(reason string)
}

// SignedLink exige query expires+signature válidos para la ruta exacta solicitada.
// El path firmado es el de la petición sin query string.
func SignedLink(checker linkChecker, obs linkObserver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := checker.CheckRaw(c.Path(), c.Query("expires"), c.Query("signature"))
		if err == nil {
			return c.Next()
		}
		reason := "invalid"
		if errors.Is(err, domain.ErrLinkExpired) {
			reason = "expired"
		}
		if obs != nil {
			obs.LinkRejected(reason)
		}
		log.Debug().Str("path", c.Path()).Str("ip", c.IP()).Str("reason", reason).Msg("enlace público rechazado")
		return writeError(c, err)
	}
}
