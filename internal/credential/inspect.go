package credential

import "strings"

// googleKeyPrefix is how Google API keys start.
const googleKeyPrefix = "AIza"

// Inspection reports whether a credential is available without revealing it.
type Inspection struct {
	Name       string `json:"name"`
	Required   bool   `json:"required"`
	Found      bool   `json:"found"`
	Source     string `json:"source,omitempty"`
	LooksValid bool   `json:"looks_valid"`
	Prefix     string `json:"prefix,omitempty"`
	Message    string `json:"message"`
}

// Inspect resolves the credential and checks that it has the expected shape.
func (r *Resolver) Inspect(fallback string) Inspection {
	in := Inspection{Name: r.name, Required: r.Required()}
	if !in.Required {
		in.LooksValid = true
		in.Message = "This provider does not need an API key."
		return in
	}

	c, err := r.Resolve(fallback)
	if err != nil {
		in.Message = "No " + r.name + " found. Add it to the secrets store or enter it to start."
		return in
	}

	in.Found = true
	in.Source = c.Source
	in.Prefix = maskedPrefix(c.Value)
	in.LooksValid = looksValid(r.name, c.Value)
	if in.LooksValid {
		in.Message = "Key found."
	} else {
		in.Message = "Key found, but it looks wrong. It starts with: '" + in.Prefix + "...'"
	}
	return in
}

func looksValid(name, value string) bool {
	if strings.HasPrefix(strings.ToUpper(name), "GOOGLE") {
		return strings.HasPrefix(value, googleKeyPrefix)
	}
	return value != ""
}

func maskedPrefix(value string) string {
	runes := []rune(value)
	if len(runes) > 4 {
		runes = runes[:4]
	}
	return string(runes)
}
