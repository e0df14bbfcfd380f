package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/billing-api/internal/domain"
)

// ContactStatus etapa del contacto en el embudo comercial.
type ContactStatus string

const (
	ContactNew       ContactStatus = "NEW"
	ContactContacted ContactStatus = "CONTACTED"
	ContactQualified ContactStatus = "QUALIFIED"
	ContactDrafting  ContactStatus = "DRAFTING"
	ContactQuoted    ContactStatus = "QUOTED"
	ContactConverted ContactStatus = "CONVERTED"
	ContactLost      ContactStatus = "LOST"
)

// orden del embudo; LOST comparte rango con NEW (un lead perdido puede reactivarse)
var contactRank = map[ContactStatus]int{
	ContactNew:       0,
	ContactLost:      0,
	ContactContacted: 1,
	ContactQualified: 2,
	ContactDrafting:  3,
	ContactQuoted:    4,
	ContactConverted: 5,
}

// ParseContactStatus acepta únicamente los valores canónicos (mayúsculas).
func ParseContactStatus(s string) (ContactStatus, error) {
	st := ContactStatus(s)
	if _, ok := contactRank[st]; !ok {
		return "", fmt.Errorf("%w: estado de contacto %q", domain.ErrInvalidInput, s)
	}
	return st, nil
}

// Contact lead o cliente.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string
	Status    ContactStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Advance mueve el contacto hacia una etapa posterior del embudo. Nunca retrocede:
// si to no es posterior a la etapa actual no cambia nada y devuelve false.
func (c *Contact) Advance(to ContactStatus, now time.Time) bool {
	if contactRank[to] <= contactRank[c.Status] {
		return false
	}
	c.Status = to
	c.UpdatedAt = now
	return true
}
