package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

// PublicHandler sirve los PDF de enlaces firmados. La firma se valida antes en SignedLink.
type PublicHandler struct {
	uc *billing.PDFUseCase
}

// NewPublicHandler construye el handler.
func NewPublicHandler(uc *billing.PDFUseCase) *PublicHandler {
	return &PublicHandler{uc: uc}
}

// PDF GET /public/:kind/:id/pdf?expires=&signature=&lang=
func (h *PublicHandler) PDF(c *fiber.Ctx) error {
	kind, err := billing.ParseDocumentKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	pdfBytes, filename, err := h.uc.Render(c.UserContext(), kind, id, c.Query("lang"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.Send(pdfBytes)
}
