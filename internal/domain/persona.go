package domain

// Persona identifies which bot an update arrived on
type Persona string

const (
	PersonaCustomer Persona = "client"
	PersonaAdmin    Persona = "admin"
	PersonaDelivery Persona = "delivery"
)

// Personas lists every bot in route order
var Personas = []Persona{PersonaCustomer, PersonaAdmin, PersonaDelivery}

// Valid reports whether p is a known persona
func (p Persona) Valid() bool {
	switch p {
	case PersonaCustomer, PersonaAdmin, PersonaDelivery:
		return true
	}
	return false
}
