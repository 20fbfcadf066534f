package tui

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/form"
)

// QuestionDraft is the editable state bound to the question huh form.
// Options are entered one per line as "Label" or "Label=icon", where the
// icon is a hosted URL or a local image file to upload.
type QuestionDraft struct {
	Text    string
	Type    string
	Live    bool
	Options string
}

// NewQuestionDraft seeds a draft from the form fields.
func NewQuestionDraft(f form.Fields) *QuestionDraft {
	lines := make([]string, len(f.Options))
	for i, o := range f.Options {
		lines[i] = form.FormatOption(o)
	}
	return &QuestionDraft{
		Text:    f.Text,
		Type:    string(f.QuestionType),
		Live:    f.IsLive,
		Options: strings.Join(lines, "\n"),
	}
}

// Form builds the huh form. errs are shown under the fields they belong to.
func (d *QuestionDraft) Form(title string, errs map[form.Field]string) *huh.Form {
	typeOptions := make([]huh.Option[string], 0, len(domain.QuestionTypes))
	for _, t := range domain.QuestionTypes {
		typeOptions = append(typeOptions, huh.NewOption(t.Label(), string(t)))
	}

	optionsHelp := "One per line: Label or Label=icon (URL or image file)"
	if msg := errs[form.FieldOptions]; msg != "" {
		optionsHelp = msg
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Question Text").
				Description(errs[form.FieldText]).
				Placeholder("Enter question text").
				Value(&d.Text),
			huh.NewSelect[string]().
				Title("Question Type").
				Options(typeOptions...).
				Value(&d.Type),
			huh.NewConfirm().
				Title("Status").
				Affirmative("Live").
				Negative("Inactive").
				Value(&d.Live),
			huh.NewText().
				Title("Options").
				Description(optionsHelp).
				Lines(6).
				Value(&d.Options),
		).Title(title),
	)
}

// OptionSpecs returns the non-blank option lines.
func (d *QuestionDraft) OptionSpecs() []string {
	var specs []string
	for _, line := range strings.Split(d.Options, "\n") {
		if strings.TrimSpace(line) != "" {
			specs = append(specs, line)
		}
	}
	return specs
}

// Apply copies the draft into f and returns the local icon files that
// still need uploading, keyed by option index.
func (d *QuestionDraft) Apply(f *form.QuestionForm) map[int]string {
	f.SetText(d.Text)
	if t, err := domain.NewQuestionType(d.Type); err == nil {
		f.SetType(t)
	}
	f.SetLive(d.Live)
	return form.ApplyOptions(f, d.OptionSpecs())
}
