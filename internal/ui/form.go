package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/market"
)

// Form field keys match the JSON names the services use in field errors.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldPassword     = "password"
	fieldLocation     = "location"
	fieldDescription  = "description"
	fieldPrice        = "pricePerHour"
	fieldAmenities    = "amenities"
	fieldContactEmail = "contactEmail"
	fieldContactPhone = "contactPhone"
	fieldImage        = "image"
	fieldPriceRange   = "priceRange"
	fieldRating       = "rating"
	fieldSearchTerm   = "searchTerm"
)

type fieldSpec struct {
	key         string
	label       string
	placeholder string
	value       string
	password    bool
	limit       int
}

type formField struct {
	key   string
	label string
	input textinput.Model
}

// form is a vertical stack of labelled text inputs with per-field errors.
type form struct {
	title     string
	fields    []formField
	focus     int
	errors    map[string]string
	submitErr string
}

func newForm(title string, specs ...fieldSpec) *form {
	f := &form{title: title, errors: map[string]string{}}
	for _, spec := range specs {
		ti := textinput.New()
		ti.Placeholder = spec.placeholder
		ti.CharLimit = spec.limit
		if ti.CharLimit == 0 {
			ti.CharLimit = 200
		}
		ti.Width = 40
		ti.Prompt = ""
		if spec.password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		ti.SetValue(spec.value)
		f.fields = append(f.fields, formField{key: spec.key, label: spec.label, input: ti})
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	for idx := range f.fields {
		if idx == i {
			f.fields[idx].input.Focus()
		} else {
			f.fields[idx].input.Blur()
		}
	}
	f.focus = i
}

// focusKey moves focus to the field named key, if present.
func (f *form) focusKey(key string) {
	for i, field := range f.fields {
		if field.key == key {
			f.setFocus(i)
			return
		}
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) value(key string) string {
	for _, field := range f.fields {
		if field.key == key {
			return field.input.Value()
		}
	}
	return ""
}

func (f *form) setValue(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
			return
		}
	}
}

// update forwards msg to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) clearErrors() {
	f.errors = map[string]string{}
	f.submitErr = ""
}

// setError spreads err over the fields it names. Anything that is not
// field-keyed becomes the submit error.
func (f *form) setError(err error) {
	f.clearErrors()
	if err == nil {
		return
	}
	var verr *apiclient.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		unmatched := false
		for name, msg := range verr.Fields {
			if f.has(name) {
				f.errors[name] = msg
			} else {
				unmatched = true
			}
		}
		if unmatched {
			f.submitErr = apiclient.Message(err)
		}
		f.focusFirstError()
		return
	}
	f.submitErr = apiclient.Message(err)
}

func (f *form) has(key string) bool {
	for _, field := range f.fields {
		if field.key == key {
			return true
		}
	}
	return false
}

func (f *form) focusFirstError() {
	for i, field := range f.fields {
		if _, ok := f.errors[field.key]; ok {
			f.setFocus(i)
			return
		}
	}
}

func (f *form) view(theme Theme, width int, busy string) string {
	styles := theme.Styles()
	labelWidth := 0
	for _, field := range f.fields {
		if n := len([]rune(field.label)); n > labelWidth {
			labelWidth = n
		}
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(f.title))
	b.WriteString("\n\n")
	for i, field := range f.fields {
		label := styles.MutedText.Render(padRight(field.label, labelWidth))
		if i == f.focus {
			label = styles.AccentText.Render(padRight(field.label, labelWidth))
		}
		b.WriteString(label + "  " + field.input.View())
		b.WriteString("\n")
		if msg := f.errors[field.key]; msg != "" {
			b.WriteString(strings.Repeat(" ", labelWidth+2))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	switch {
	case busy != "":
		b.WriteString(styles.InfoText.Render(busy))
	case f.submitErr != "":
		b.WriteString(styles.DangerText.Render(f.submitErr))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2)
	if width > 0 {
		box = box.MaxWidth(width)
	}
	return box.Render(b.String())
}

// Form builders

func loginForm(lastEmail string) *form {
	f := newForm("Log in",
		fieldSpec{key: fieldEmail, label: "Email", placeholder: "you@example.com", value: lastEmail},
		fieldSpec{key: fieldPassword, label: "Password", password: true},
	)
	if lastEmail != "" {
		f.focusKey(fieldPassword)
	}
	return f
}

func signupForm() *form {
	return newForm("Create account",
		fieldSpec{key: fieldName, label: "Name", limit: 120},
		fieldSpec{key: fieldEmail, label: "Email", placeholder: "you@example.com"},
		fieldSpec{key: fieldPassword, label: "Password", placeholder: "at least 6 characters", password: true},
	)
}

func studioForm(title string, in market.StudioInput) *form {
	price := ""
	if in.PricePerHour != 0 {
		price = strconv.FormatFloat(in.PricePerHour, 'f', -1, 64)
	}
	return newForm(title,
		fieldSpec{key: fieldName, label: "Name", value: in.Name, limit: 120},
		fieldSpec{key: fieldLocation, label: "Location", value: in.Location},
		fieldSpec{key: fieldDescription, label: "Description", value: in.Description, limit: 2000},
		fieldSpec{key: fieldPrice, label: "Price per hour", value: price, limit: 16},
		fieldSpec{key: fieldAmenities, label: "Amenities", placeholder: "comma separated", value: strings.Join(in.Amenities, ", ")},
		fieldSpec{key: fieldContactEmail, label: "Contact email", value: in.ContactEmail},
		fieldSpec{key: fieldContactPhone, label: "Contact phone", value: in.ContactPhone, limit: 32},
		fieldSpec{key: fieldImage, label: "Image", placeholder: "URL or local file to upload", value: in.Image, limit: 1024},
	)
}

func filterForm(filters market.StudioFilters) *form {
	return newForm("Filter studios",
		fieldSpec{key: fieldLocation, label: "Location", value: filters.Location},
		fieldSpec{key: fieldPriceRange, label: "Price range", placeholder: "min-max", value: filters.PriceRange},
		fieldSpec{key: fieldRating, label: "Min rating", value: filters.Rating},
		fieldSpec{key: fieldSearchTerm, label: "Search", value: filters.SearchTerm},
	)
}

// Form readers

func (f *form) credentials() market.Credentials {
	return market.Credentials{
		Email:    strings.TrimSpace(f.value(fieldEmail)),
		Password: f.value(fieldPassword),
	}
}

func (f *form) signupRequest() market.SignupRequest {
	return market.SignupRequest{
		Name:     strings.TrimSpace(f.value(fieldName)),
		Email:    strings.TrimSpace(f.value(fieldEmail)),
		Password: f.value(fieldPassword),
	}
}

// studioInput reads the studio form. A price that is not a number is
// reported as a field error.
func (f *form) studioInput() (market.StudioInput, error) {
	price, ok := parsePrice(f.value(fieldPrice))
	if !ok {
		return market.StudioInput{}, &apiclient.ValidationError{
			Message: "invalid input",
			Fields:  map[string]string{fieldPrice: "must be a number"},
		}
	}
	return market.StudioInput{
		Name:         f.value(fieldName),
		Location:     f.value(fieldLocation),
		Description:  f.value(fieldDescription),
		PricePerHour: price,
		Amenities:    market.ParseAmenities(f.value(fieldAmenities)),
		ContactEmail: f.value(fieldContactEmail),
		ContactPhone: f.value(fieldContactPhone),
		Image:        strings.TrimSpace(f.value(fieldImage)),
	}, nil
}

func (f *form) filters() market.StudioFilters {
	return market.StudioFilters{
		Location:   strings.TrimSpace(f.value(fieldLocation)),
		PriceRange: strings.TrimSpace(f.value(fieldPriceRange)),
		Rating:     strings.TrimSpace(f.value(fieldRating)),
		SearchTerm: strings.TrimSpace(f.value(fieldSearchTerm)),
	}
}
