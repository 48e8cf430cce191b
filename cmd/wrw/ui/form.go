package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FieldKind tells the form how to edit and parse one field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldInt
	FieldBool
)

// FieldSpec declares one form field. Key doubles as the validation error key,
// so it must match the entity's JSON field name.
type FieldSpec struct {
	Key         string
	Label       string
	Kind        FieldKind
	Placeholder string
}

type field struct {
	spec    FieldSpec
	input   textinput.Model
	boolVal bool
}

// Form is a vertical stack of labeled inputs with focus cycling and per-field
// error messages. Pages snapshot entity values into it on edit entry and read
// them back on save; cancel simply discards the form.
type Form struct {
	fields []field
	focus  int
	errors map[string]string
}

// NewForm builds a form from the given specs. The first field gets focus.
func NewForm(specs ...FieldSpec) Form {
	f := Form{errors: map[string]string{}}
	for i, spec := range specs {
		ti := textinput.New()
		ti.Placeholder = spec.Placeholder
		ti.CharLimit = 500
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		f.fields = append(f.fields, field{spec: spec, input: ti})
	}
	return f
}

// SetValue sets a field's textual value.
func (f *Form) SetValue(key, value string) {
	for i := range f.fields {
		if f.fields[i].spec.Key == key {
			f.fields[i].input.SetValue(value)
			return
		}
	}
}

// SetBool sets a toggle field's value.
func (f *Form) SetBool(key string, value bool) {
	for i := range f.fields {
		if f.fields[i].spec.Key == key {
			f.fields[i].boolVal = value
			return
		}
	}
}

// Value returns a field's trimmed textual value.
func (f Form) Value(key string) string {
	for _, fl := range f.fields {
		if fl.spec.Key == key {
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

// IntValue parses a field as an int; blank reads as zero. Save paths reject
// unparseable input through ParseErrors before reading values.
func (f Form) IntValue(key string) int {
	n, _ := strconv.Atoi(f.Value(key))
	return n
}

// Int64Value parses a field as an int64; blank reads as zero.
func (f Form) Int64Value(key string) int64 {
	n, _ := strconv.ParseInt(f.Value(key), 10, 64)
	return n
}

// OptionalInt returns nil for a blank field, otherwise the parsed value.
func (f Form) OptionalInt(key string) *int {
	v := f.Value(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// ParseErrors reports the int fields whose non-blank text does not parse as a
// number, keyed like validator output so the messages land on the fields.
func (f Form) ParseErrors() validation.Errors {
	errs := validation.Errors{}
	for _, fl := range f.fields {
		if fl.spec.Kind != FieldInt {
			continue
		}
		v := strings.TrimSpace(fl.input.Value())
		if v == "" {
			continue
		}
		if _, err := strconv.Atoi(v); err != nil {
			errs[fl.spec.Key] = errors.New("must be a valid number")
		}
	}
	return errs
}

// mergeFieldErrors folds validator output into dst. A parse error already in
// dst wins over the validator's message for the same field, so an unparseable
// year reads "must be a valid number" rather than "cannot be blank".
func mergeFieldErrors(dst validation.Errors, err error) {
	if err == nil {
		return
	}
	verrs, ok := err.(validation.Errors)
	if !ok {
		dst["_"] = err
		return
	}
	for key, ferr := range verrs {
		if _, seen := dst[key]; !seen {
			dst[key] = ferr
		}
	}
}

// OptionalString returns nil for a blank field, otherwise the value.
func (f Form) OptionalString(key string) *string {
	v := f.Value(key)
	if v == "" {
		return nil
	}
	return &v
}

// BoolValue returns a toggle field's value.
func (f Form) BoolValue(key string) bool {
	for _, fl := range f.fields {
		if fl.spec.Key == key {
			return fl.boolVal
		}
	}
	return false
}

// SetErrors replaces the per-field error messages. Passing a
// validation.Errors from ozzo lands each message under its JSON field key.
func (f *Form) SetErrors(err error) {
	f.errors = map[string]string{}
	if err == nil {
		return
	}
	if verrs, ok := err.(validation.Errors); ok {
		for key, ferr := range verrs {
			f.errors[key] = ferr.Error()
		}
		return
	}
	// Non-field error: pin it to the focused field.
	if len(f.fields) > 0 {
		f.errors[f.fields[f.focus].spec.Key] = err.Error()
	}
}

// HasErrors reports whether any field currently shows an error.
func (f Form) HasErrors() bool {
	return len(f.errors) > 0
}

// Update handles focus cycling, toggle flips and text editing.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.setFocus((f.focus + 1) % len(f.fields))
			return f, nil
		case "shift+tab", "up":
			f.setFocus((f.focus - 1 + len(f.fields)) % len(f.fields))
			return f, nil
		case " ":
			if f.fields[f.focus].spec.Kind == FieldBool {
				f.fields[f.focus].boolVal = !f.fields[f.focus].boolVal
				return f, nil
			}
		}
	}

	if f.fields[f.focus].spec.Kind == FieldBool {
		return f, nil
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f *Form) setFocus(i int) {
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// View renders the form with inline error messages.
func (f Form) View(styles Styles) string {
	var sb strings.Builder
	for i, fl := range f.fields {
		sb.WriteString(styles.FormLabel.Render(fl.spec.Label))

		switch fl.spec.Kind {
		case FieldBool:
			val := "negative"
			if fl.boolVal {
				val = "positive"
			}
			style := styles.FieldIdle
			if i == f.focus {
				style = styles.FieldActive
			}
			sb.WriteString(style.Render(val + "  (space toggles)"))
		default:
			style := styles.FieldIdle
			if i == f.focus {
				style = styles.FieldActive
			}
			sb.WriteString(style.Render(fl.input.View()))
		}

		if msg, ok := f.errors[fl.spec.Key]; ok {
			sb.WriteString("  " + styles.FormError.Render(msg))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
