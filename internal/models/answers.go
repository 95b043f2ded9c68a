package models

import (
	"encoding/json"
	"fmt"
)

// Field identifies a slot on a Discussion that an answer is written into.
type Field int

const (
	FieldDescription Field = iota
	FieldBusinessValue
	FieldTargetUsers
	FieldRequirements
	FieldSuccessCriteria
	FieldTechnicalApproach
	FieldRisks
	FieldTimeline

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldDescription:       "description",
	FieldBusinessValue:     "businessValue",
	FieldTargetUsers:       "targetUsers",
	FieldRequirements:      "requirements",
	FieldSuccessCriteria:   "successCriteria",
	FieldTechnicalApproach: "technicalApproach",
	FieldRisks:             "risks",
	FieldTimeline:          "timeline",
}

var listFields = [fieldCount]bool{
	FieldTargetUsers:     true,
	FieldRequirements:    true,
	FieldSuccessCriteria: true,
	FieldRisks:           true,
}

// Fields returns every slot in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// IsList reports whether answers to f are stored as a sequence of lines.
func (f Field) IsList() bool {
	return f.Valid() && listFields[f]
}

func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueScalar
	ValueList
)

// Value is an optional slot value: absent, a scalar string or a list of strings.
type Value struct {
	Kind  ValueKind
	Text  string
	Items []string
}

func Scalar(s string) Value {
	return Value{Kind: ValueScalar, Text: s}
}

func List(items []string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{Kind: ValueList, Items: items}
}

func (v Value) Present() bool {
	return v.Kind != ValueAbsent
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueScalar:
		return json.Marshal(v.Text)
	case ValueList:
		return json.Marshal(v.Items)
	default:
		return []byte("null"), nil
	}
}

// Answers holds one Value per Field.
type Answers [fieldCount]Value

func (a Answers) Get(f Field) Value {
	if !f.Valid() {
		return Value{}
	}
	return a[f]
}

func (a *Answers) Set(f Field, v Value) {
	if f.Valid() {
		a[f] = v
	}
}

func (a Answers) Clone() Answers {
	out := a
	for i := range out {
		if out[i].Items != nil {
			out[i].Items = append([]string{}, out[i].Items...)
		}
	}
	return out
}

// MarshalJSON writes present slots only, keyed by wire name.
func (a Answers) MarshalJSON() ([]byte, error) {
	m := make(map[string]Value, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		if a[f].Present() {
			m[f.String()] = a[f]
		}
	}
	return json.Marshal(m)
}

func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Answers
	for name, msg := range raw {
		f, err := ParseField(name)
		if err != nil {
			return err
		}
		if f.IsList() {
			var items []string
			if err := json.Unmarshal(msg, &items); err != nil {
				return fmt.Errorf("decoding %s: %w", name, err)
			}
			out[f] = List(items)
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return fmt.Errorf("decoding %s: %w", name, err)
		}
		out[f] = Scalar(s)
	}
	*a = out
	return nil
}
