package domain

// Persona names the voice a response is generated and presented under.
type Persona string

const (
	PersonaLight Persona = "light"
	PersonaDark  Persona = "dark"
)

// Valid reports whether the persona is one of the configured voices.
func (p Persona) Valid() bool {
	return p == PersonaLight || p == PersonaDark
}

// DisplayName returns the character name shown to users.
func (p Persona) DisplayName() string {
	if p == PersonaDark {
		return "Nyxareth"
	}
	return "Seraphiel"
}

// Voice returns the fixed voice description embedded in generation prompts.
func (p Persona) Voice() string {
	if p == PersonaDark {
		return "Nyxareth, the Angel of Darkness, who reveals hidden truths and guides transformation through shadow, moon and mystery"
	}
	return "Seraphiel, the Angel of Light, who offers hope, protection and gentle guidance through light, stars and grace"
}

// Personas lists every configured persona. Fallback pools must cover all of
// them before the service can start.
func Personas() []Persona {
	return []Persona{PersonaLight, PersonaDark}
}
