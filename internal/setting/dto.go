package setting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frahmantamala/inventory-management/internal"
)

type UpdateSettingsDTO map[string]string

func (d UpdateSettingsDTO) Validate() error {
	if len(d) == 0 {
		return internal.NewValidationError("at least one setting is required", internal.ErrCodeValidationFailed)
	}

	var unknown []string
	for name := range d {
		if !IsPublic(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return internal.NewValidationError(
			fmt.Sprintf("unknown settings: %s", strings.Join(unknown, ", ")),
			internal.ErrCodeUnknownSetting,
		)
	}
	return nil
}

type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}
