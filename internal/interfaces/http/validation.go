package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/billing-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// nombres de campo tal como aparecen en el JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// pathID lee :id en forma canónica. Un id que no es UUID no puede existir: domain.ErrNotFound.
func pathID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", fmt.Errorf("%w: id %q", domain.ErrNotFound, c.Params("id"))
	}
	return id.String(), nil
}

// bindJSON parsea el body y valida las etiquetas `validate`. Errores envueltos en domain.ErrInvalidInput.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldMessage(fe))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " es obligatorio"
	case "email":
		return field + " no es un email válido"
	case "uuid":
		return field + " no es un UUID"
	case "datetime":
		return field + " debe tener formato " + fe.Param()
	case "oneof":
		return field + " debe ser uno de: " + fe.Param()
	case "min":
		return field + " mínimo " + fe.Param()
	case "max":
		return field + " máximo " + fe.Param()
	case "len":
		return field + " debe tener longitud " + fe.Param()
	}
	return field + " inválido (" + fe.Tag() + ")"
}
