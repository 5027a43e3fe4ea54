package catalog

import (
	"maps"
	"slices"

	"github.com/connect-util/connect-util/pkg/apperr"
)

// ValidateConfig checks a parsed connector configuration against the
// definition and returns the first failing rule:
//
//  1. every required field is present in either map
//  2. no sensitive field carries a non-empty value in the non-sensitive map
//  3. every known field with a restricted value set holds an allowed value
//
// On a key collision the sensitive value supersedes the non-sensitive one.
// The enum check walks keys in sorted order so the reported failure is stable.
func (d ConnectorDefinition) ValidateConfig(nonSensitive, sensitive map[string]string) error {
	merged := make(map[string]string, len(nonSensitive)+len(sensitive))
	maps.Copy(merged, nonSensitive)
	maps.Copy(merged, sensitive)

	for _, field := range d.RequiredConfigs {
		if _, ok := merged[field.Name]; !ok {
			return apperr.NewMissingField(field.Name)
		}
	}

	for _, name := range d.SensitiveConfigs {
		if v, ok := nonSensitive[name]; ok && v != "" {
			return apperr.NewMisplacedSensitiveField(name)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(merged)) {
		field, ok := d.Field(key)
		if !ok || !field.Restricted() {
			continue
		}
		if value := merged[key]; !field.Allows(value) {
			return apperr.NewInvalidEnumValue(key, value, field.ValidValues)
		}
	}

	return nil
}
