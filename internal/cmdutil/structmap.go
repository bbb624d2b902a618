package cmdutil

import (
	"reflect"
	"strings"
	"time"
	"unicode"
)

// StructToMapOptions configures StructToMap behavior.
type StructToMapOptions struct {
	OmitFields       map[string]bool
	KeyOverrides     map[string]string
	JoinStringSlices bool
	// TimeFormat formats time.Time fields in UTC. Empty uses time.Time.String.
	TimeFormat string
}

// StructToMap converts a struct into a row map keyed by snake_case field
// names, ready for a datastore insert. Named string types such as mpn.Key
// are stored as plain strings.
func StructToMap[T any](value T, opts StructToMapOptions) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return result
		}
		v = v.Elem()
	}

	appendStructFields(v, result, opts)
	return result
}

func appendStructFields(v reflect.Value, result map[string]any, opts StructToMapOptions) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		if opts.OmitFields != nil && opts.OmitFields[field.Name] {
			continue
		}

		value := v.Field(i)
		if field.Anonymous && value.Kind() == reflect.Struct {
			appendStructFields(value, result, opts)
			continue
		}

		key := toSnakeCase(field.Name)
		if override, ok := opts.KeyOverrides[field.Name]; ok {
			key = override
		}

		result[key] = normalizeValue(value, opts)
	}
}

func normalizeValue(value reflect.Value, opts StructToMapOptions) any {
	if !value.IsValid() {
		return nil
	}

	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	if value.Type() == timeType {
		ts := value.Interface().(time.Time)
		if opts.TimeFormat == "" {
			return ts.String()
		}
		return ts.UTC().Format(opts.TimeFormat)
	}

	switch value.Kind() {
	case reflect.String:
		return value.String()
	case reflect.Slice:
		if opts.JoinStringSlices && value.Type().Elem().Kind() == reflect.String {
			items := make([]string, value.Len())
			for i := range items {
				items[i] = value.Index(i).String()
			}
			return strings.Join(items, ",")
		}
	}

	return value.Interface()
}

var timeType = reflect.TypeOf(time.Time{})

// toSnakeCase splits on lower-to-upper and digit-to-upper transitions and
// before the last capital of an acronym: NormalizedMPN -> normalized_mpn,
// DatasheetURL -> datasheet_url, HTTPStatus -> http_status.
func toSnakeCase(input string) string {
	runes := []rune(input)
	var builder strings.Builder
	builder.Grow(len(runes) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && startsWord(runes, i) {
			builder.WriteRune('_')
		}
		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}

// startsWord reports whether the capital at runes[i] begins a new word.
func startsWord(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	if !unicode.IsUpper(prev) || i+1 >= len(runes) || !unicode.IsLower(runes[i+1]) {
		return false
	}
	// "MPNs" stays one word, "MPNValue" splits before V
	return i+2 >= len(runes) || !unicode.IsUpper(runes[i+2])
}
