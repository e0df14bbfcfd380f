// Package numbering genera los identificadores legibles de cotizaciones y facturas.
//
// Dos políticas por serie (se elige una por tipo de documento y no se mezclan):
//
//	sequential  PREFIX-0001            contador monótono de la serie
//	daily       PREFIX-YYYYMMDD-NNN    secuencia que reinicia cada día calendario (UTC)
//
// La unicidad la garantiza la restricción UNIQUE de almacenamiento; una colisión
// se resuelve regenerando el número (Retry), nunca reutilizándolo.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/billing-api/internal/domain"
)

// Policy política de numeración de una serie.
type Policy string

const (
	Sequential Policy = "sequential"
	Daily      Policy = "daily"
)

// ParsePolicy valida el nombre de política leído de configuración.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case Sequential, "":
		return Sequential, nil
	case Daily:
		return Daily, nil
	}
	return "", fmt.Errorf("numbering: política desconocida %q", s)
}

// Series serie de numeración (prefijo + política).
type Series struct {
	Prefix string
	Policy Policy
}

// Source devuelve el último número emitido dentro de un ámbito (prefijo completo),
// o "" si todavía no hay ninguno.
type Source interface {
	LastNumberWithPrefix(ctx context.Context, scopePrefix string) (string, error)
}

// Scope prefijo que comparten todos los números del mismo ámbito: "QT-" o "QT-20261017-".
func (s Series) Scope(now time.Time) string {
	if s.Policy == Daily {
		return s.Prefix + "-" + now.UTC().Format("20060102") + "-"
	}
	return s.Prefix + "-"
}

// Format construye el número para la secuencia indicada.
func (s Series) Format(seq int, now time.Time) string {
	if s.Policy == Daily {
		return fmt.Sprintf("%s%03d", s.Scope(now), seq)
	}
	return fmt.Sprintf("%s%04d", s.Scope(now), seq)
}

// sequenceOf extrae la secuencia de un número del ámbito; false si no pertenece a él.
func (s Series) sequenceOf(number string, now time.Time) (int, bool) {
	scope := s.Scope(now)
	if !strings.HasPrefix(number, scope) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(scope):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Next calcula el siguiente número de la serie a partir del último emitido en el ámbito.
// Se deriva del máximo existente (no de un COUNT) para tolerar huecos por documentos borrados.
func (s Series) Next(ctx context.Context, src Source, now time.Time) (string, error) {
	last, err := src.LastNumberWithPrefix(ctx, s.Scope(now))
	if err != nil {
		return "", fmt.Errorf("numbering: último número: %w", err)
	}
	seq := 0
	if last != "" {
		if n, ok := s.sequenceOf(last, now); ok {
			seq = n
		}
	}
	return s.Format(seq+1, now), nil
}

// Retry ejecuta fn y, si falla por colisión de número, la repite hasta maxRetries veces
// (cada intento debe recalcular el número). Agotados los reintentos devuelve ErrTransient.
func Retry(maxRetries int, fn func(attempt int) error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = fn(attempt)
		if err == nil || !errors.Is(err, domain.ErrNumberCollision) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrTransient, err)
}
