package types

import (
	"fmt"
	"time"
)

// FieldValue is the validated, typed form of one submitted field value.
// Exactly one of the payload members is meaningful, selected by Format;
// Null means the value was explicitly null.
type FieldValue struct {
	Format  FieldFormat
	Null    bool
	Text    string
	Number  float64
	Bool    bool
	Option  string
	Options []string
	Date    time.Time
}

// dateLayouts are the accepted date encodings, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFieldValue checks v against the field format and returns its typed form.
// optionKeys are the active option keys for select/multiSelect formats.
// JSON-decoded values are expected: numbers arrive as float64, arrays as []interface{}.
func ParseFieldValue(format FieldFormat, optionKeys []string, v interface{}) (FieldValue, error) {
	fv := FieldValue{Format: format}

	if v == nil {
		// null is only meaningful for select; everything else treats it as a mismatch
		if format == FieldFormatSelect {
			fv.Null = true
			return fv, nil
		}
		return fv, formatError(v, format)
	}

	switch format {
	case FieldFormatText, FieldFormatKeyword:
		s, ok := v.(string)
		if !ok {
			return fv, formatError(v, format)
		}
		fv.Text = s

	case FieldFormatNumber:
		n, ok := v.(float64)
		if !ok {
			return fv, formatError(v, format)
		}
		fv.Number = n

	case FieldFormatBoolean:
		b, ok := v.(bool)
		if !ok {
			return fv, formatError(v, format)
		}
		fv.Bool = b

	case FieldFormatSelect:
		s, ok := v.(string)
		if !ok {
			return fv, formatError(v, format)
		}
		if !containsKey(optionKeys, s) {
			return fv, fmt.Errorf("%q is not an option key of a %s field", s, format)
		}
		fv.Option = s

	case FieldFormatMultiSelect:
		arr, ok := v.([]interface{})
		if !ok {
			return fv, formatError(v, format)
		}
		keys := make([]string, 0, len(arr))
		for _, el := range arr {
			s, ok := el.(string)
			if !ok {
				return fv, formatError(el, format)
			}
			if !containsKey(optionKeys, s) {
				return fv, fmt.Errorf("%q is not an option key of a %s field", s, format)
			}
			keys = append(keys, s)
		}
		fv.Options = keys

	case FieldFormatImages:
		arr, ok := v.([]interface{})
		if !ok {
			return fv, formatError(v, format)
		}
		urls := make([]string, 0, len(arr))
		for _, el := range arr {
			s, ok := el.(string)
			if !ok {
				return fv, formatError(el, format)
			}
			urls = append(urls, s)
		}
		fv.Options = urls

	case FieldFormatDate:
		// a bare number is never a date, even though it could parse as an epoch
		if _, isNum := v.(float64); isNum {
			return fv, formatError(v, format)
		}
		s, ok := v.(string)
		if !ok {
			return fv, formatError(v, format)
		}
		t, err := parseDate(s)
		if err != nil {
			return fv, formatError(v, format)
		}
		fv.Date = t

	default:
		return fv, fmt.Errorf("unknown field format: %s", format)
	}

	return fv, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

func formatError(v interface{}, format FieldFormat) error {
	return fmt.Errorf("%v is not a valid %s value", v, format)
}
