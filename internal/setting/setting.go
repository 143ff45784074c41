// Package setting is the key-value configuration store. Only the whitelisted
// display and SSO keys are readable or writable through it.
package setting

import "sort"

// Defaults holds every public key and the value reported until it is set.
var Defaults = map[string]string{
	"company_name":       "Inventario Pro",
	"header_font_family": "Inter",
	"header_font_size":   "24px",
	"header_text_align":  "left",
	"sso_enabled":        "false",
	"sso_provider":       "",
	"sso_url":            "",
	"sso_entity_id":      "",
	"sso_certificate":    "",
}

func IsPublic(name string) bool {
	_, ok := Defaults[name]
	return ok
}

// PublicKeys returns the whitelisted keys in a stable order.
func PublicKeys() []string {
	keys := make([]string, 0, len(Defaults))
	for k := range Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
