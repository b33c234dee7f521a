package util

// countryCodes maps the country names the checkout form offers to their
// ISO 3166-1 alpha-2 codes as required by the payment processor.
var countryCodes = map[string]string{
	"United Kingdom": "GB",
	"United States":  "US",
	"Egypt":          "EG",
	"Canada":         "CA",
	"Australia":      "AU",
}

// NormalizeCountry converts a country name to its two-letter code.
// Unrecognized input is passed through unchanged so a user who already
// typed a code (or an unlisted country) is not blocked at validation.
func NormalizeCountry(name string) string {
	if code, ok := countryCodes[name]; ok {
		return code
	}
	return name
}
