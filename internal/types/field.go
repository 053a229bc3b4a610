package types

// FieldFormat is the value shape a channel field accepts.
type FieldFormat string

const (
	FieldFormatText        FieldFormat = "text"
	FieldFormatKeyword     FieldFormat = "keyword"
	FieldFormatNumber      FieldFormat = "number"
	FieldFormatBoolean     FieldFormat = "boolean"
	FieldFormatSelect      FieldFormat = "select"
	FieldFormatMultiSelect FieldFormat = "multiSelect"
	FieldFormatDate        FieldFormat = "date"
	FieldFormatImages      FieldFormat = "images"
)

// FieldType controls who may write a field's value.
type FieldType string

const (
	FieldTypeDefault FieldType = "default"
	FieldTypeAdmin   FieldType = "admin"
	FieldTypeAPI     FieldType = "api"
)

// FieldStatus marks whether a field accepts new values.
type FieldStatus string

const (
	FieldStatusActive   FieldStatus = "active"
	FieldStatusInactive FieldStatus = "inactive"
)

// IsValid reports whether f is one of the known formats.
func (f FieldFormat) IsValid() bool {
	switch f {
	case FieldFormatText, FieldFormatKeyword, FieldFormatNumber, FieldFormatBoolean,
		FieldFormatSelect, FieldFormatMultiSelect, FieldFormatDate, FieldFormatImages:
		return true
	}
	return false
}

// IsSelectFormat reports whether f carries options (select or multiSelect).
func (f FieldFormat) IsSelectFormat() bool {
	return f == FieldFormatSelect || f == FieldFormatMultiSelect
}
