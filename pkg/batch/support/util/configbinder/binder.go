// Package configbinder decodes free-form configuration maps into typed structs.
package configbinder

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// BindProperties binds a map of properties to a target struct using mapstructure.
// It uses the "yaml" tag for binding, allows weakly typed input (e.g. "8" to int),
// and decodes duration strings such as "10s" into time.Duration fields.
func BindProperties(properties map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(properties); err != nil {
		targetType := reflect.TypeOf(target)
		if targetType != nil && targetType.Kind() == reflect.Ptr {
			targetType = targetType.Elem()
		}
		return fmt.Errorf("failed to bind properties to %v: %w", targetType, err)
	}
	return nil
}

// BindSection binds properties[key] to target. A missing key leaves target untouched.
// The section must itself be a map; yaml.v3 produces map[string]interface{} for nested mappings.
func BindSection(properties map[string]interface{}, key string, target interface{}) error {
	raw, ok := properties[key]
	if !ok || raw == nil {
		return nil
	}
	section, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("configuration section '%s' must be a mapping, got %T", key, raw)
	}
	return BindProperties(section, target)
}
