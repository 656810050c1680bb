package controller

// SectionDescriptor identifies one section a device exposes, as
// returned by discovery. Hint carries auxiliary addressing data, e.g. a
// sensor index encoded as text.
type SectionDescriptor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// ItemType discriminates the rendering of a section item.
type ItemType string

const (
	ItemString ItemType = "string"
	ItemUInt   ItemType = "uint"
	ItemBool   ItemType = "bool"
	ItemSelect ItemType = "select"
	ItemHidden ItemType = "hidden"
)

// Option is one entry of a select item.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Item is one row of a section result. Which value fields are set
// depends on Type.
type Item struct {
	Type     ItemType `json:"type"`
	Label    string   `json:"label,omitempty"`
	Field    string   `json:"field,omitempty"` // form field name for writable items
	Value    string   `json:"value,omitempty"`
	UIntVal  uint32   `json:"uint_value,omitempty"`
	BoolVal  bool     `json:"bool_value,omitempty"`
	Min      *uint32  `json:"min,omitempty"`
	Max      *uint32  `json:"max,omitempty"`
	Options  []Option `json:"options,omitempty"`
	Selected int      `json:"selected"` // select offset; -1 when nothing selected
}

// Section is the payload of a completed section read: an ordered list
// of items plus an optional save-button label for writable sections.
type Section struct {
	Items      []Item `json:"items"`
	SaveButton string `json:"save_button,omitempty"`
}

// AddString appends a read-only string item.
func (s *Section) AddString(label, value string) {
	s.Items = append(s.Items, Item{Type: ItemString, Label: label, Value: value})
}

// AddStringField appends a writable string item bound to a form field.
func (s *Section) AddStringField(label, value, field string) {
	s.Items = append(s.Items, Item{Type: ItemString, Label: label, Value: value, Field: field})
}

// AddUInt appends a read-only numeric item.
func (s *Section) AddUInt(label string, value uint32) {
	s.Items = append(s.Items, Item{Type: ItemUInt, Label: label, UIntVal: value})
}

// AddUIntField appends a writable numeric item with an inclusive range.
func (s *Section) AddUIntField(label string, value uint32, field string, minVal, maxVal uint32) {
	s.Items = append(s.Items, Item{
		Type: ItemUInt, Label: label, UIntVal: value, Field: field,
		Min: &minVal, Max: &maxVal,
	})
}

// AddBoolField appends a writable boolean item.
func (s *Section) AddBoolField(label string, value bool, field string) {
	s.Items = append(s.Items, Item{Type: ItemBool, Label: label, BoolVal: value, Field: field})
}

// AddHidden appends a hidden form value.
func (s *Section) AddHidden(field, value string) {
	s.Items = append(s.Items, Item{Type: ItemHidden, Field: field, Value: value})
}
