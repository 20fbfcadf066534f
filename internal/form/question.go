// Package form implements the create/edit question modal as a state
// machine independent of any rendering surface.
package form

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	adminerrors "github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
)

// Mode is the modal state.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "open-create"
	case ModeEdit:
		return "open-edit"
	default:
		return "closed"
	}
}

// Field names a validated input.
type Field string

const (
	FieldText    Field = "text"
	FieldOptions Field = "options"
)

// Validation and toast messages.
const (
	MsgTextRequired   = "Question text is required"
	MsgOptionsMinimum = "At least 2 non-empty labels required"
	MsgFixErrors      = "Please fix the errors before submitting."
	MsgCannotRemove   = "Cannot remove option"
	MsgIconUploaded   = "Icon uploaded"
	MsgUploadFailed   = "Upload failed"
)

// MinOptions is the fewest options a question may have.
const MinOptions = 2

// Saver persists a validated question. Implementations report their own
// success and failure notifications.
type Saver interface {
	CreateQuestion(ctx context.Context, in domain.QuestionInput) error
	UpdateQuestion(ctx context.Context, id string, in domain.QuestionInput) error
}

// Fields is the editable state of the modal.
type Fields struct {
	Text         string
	QuestionType domain.QuestionType
	IsLive       bool
	Options      []domain.Option
}

// emptyFields is the template every reset returns to.
func emptyFields() Fields {
	return Fields{
		QuestionType: domain.QuestionTypeSingle,
		IsLive:       true,
		Options:      []domain.Option{{}, {}},
	}
}

// QuestionForm is the question modal.
//
// Each option carries an internal key so an icon upload that finishes
// after options were added or removed lands on the option it started for.
type QuestionForm struct {
	mode      Mode
	editingID string
	fields    Fields
	keys      []int
	nextKey   int
	errors    map[Field]string
	uploading map[int]bool
	notifier  notify.Notifier
}

// NewQuestionForm creates a closed form.
func NewQuestionForm(n notify.Notifier) *QuestionForm {
	f := &QuestionForm{notifier: n}
	f.Reset()
	return f
}

// Reset closes the form and restores the empty two-option template.
func (f *QuestionForm) Reset() {
	f.mode = ModeClosed
	f.editingID = ""
	f.fields = emptyFields()
	f.keys = nil
	for range f.fields.Options {
		f.keys = append(f.keys, f.newKey())
	}
	f.errors = make(map[Field]string)
	f.uploading = make(map[int]bool)
}

func (f *QuestionForm) newKey() int {
	f.nextKey++
	return f.nextKey
}

// OpenCreate opens an empty form.
func (f *QuestionForm) OpenCreate() {
	f.Reset()
	f.mode = ModeCreate
}

// OpenEdit opens the form seeded from q.
func (f *QuestionForm) OpenEdit(q domain.Question) {
	f.Reset()
	f.mode = ModeEdit
	f.editingID = q.ID

	f.fields.Text = q.Text
	if q.QuestionType.Validate() == nil {
		f.fields.QuestionType = q.QuestionType
	}
	f.fields.IsLive = q.IsLive
	if len(q.Options) > 0 {
		f.fields.Options = make([]domain.Option, len(q.Options))
		copy(f.fields.Options, q.Options)
		f.keys = f.keys[:0]
		for range f.fields.Options {
			f.keys = append(f.keys, f.newKey())
		}
	}
}

// Mode returns the modal state.
func (f *QuestionForm) Mode() Mode { return f.mode }

// IsOpen reports whether the modal is showing.
func (f *QuestionForm) IsOpen() bool { return f.mode != ModeClosed }

// EditingID is the id of the question being edited, "" when creating.
func (f *QuestionForm) EditingID() string { return f.editingID }

// Title is the modal heading.
func (f *QuestionForm) Title() string {
	if f.mode == ModeEdit {
		return "Edit Question"
	}
	return "Add Question"
}

// Fields returns a copy of the editable state.
func (f *QuestionForm) Fields() Fields {
	out := f.fields
	out.Options = make([]domain.Option, len(f.fields.Options))
	copy(out.Options, f.fields.Options)
	return out
}

// SetText edits the question text and clears its error.
func (f *QuestionForm) SetText(s string) {
	f.fields.Text = s
	delete(f.errors, FieldText)
}

// SetType changes the question type.
func (f *QuestionForm) SetType(t domain.QuestionType) {
	f.fields.QuestionType = t
}

// SetLive changes the live flag.
func (f *QuestionForm) SetLive(live bool) {
	f.fields.IsLive = live
}

// SetOptionLabel edits option i and clears the options error.
func (f *QuestionForm) SetOptionLabel(i int, label string) {
	if i < 0 || i >= len(f.fields.Options) {
		return
	}
	f.fields.Options[i].Label = label
	delete(f.errors, FieldOptions)
}

// SetOptionIcon sets an icon URL directly (e.g. a pre-hosted image).
func (f *QuestionForm) SetOptionIcon(i int, url string) {
	if i < 0 || i >= len(f.fields.Options) {
		return
	}
	f.fields.Options[i].Icon = url
}

// AddOption appends an empty option.
func (f *QuestionForm) AddOption() {
	f.fields.Options = append(f.fields.Options, domain.Option{})
	f.keys = append(f.keys, f.newKey())
}

// SetOptions replaces the whole option list. In-flight uploads for the
// replaced options are dropped.
func (f *QuestionForm) SetOptions(opts []domain.Option) {
	f.fields.Options = make([]domain.Option, len(opts))
	copy(f.fields.Options, opts)
	f.keys = f.keys[:0]
	for range opts {
		f.keys = append(f.keys, f.newKey())
	}
	f.uploading = make(map[int]bool)
	delete(f.errors, FieldOptions)
}

// RemoveOption deletes option i. It refuses, with a notification, when
// only MinOptions remain.
func (f *QuestionForm) RemoveOption(i int) bool {
	if len(f.fields.Options) <= MinOptions {
		notify.Error(f.notifier, MsgCannotRemove)
		return false
	}
	if i < 0 || i >= len(f.fields.Options) {
		return false
	}
	f.fields.Options = append(f.fields.Options[:i], f.fields.Options[i+1:]...)
	f.keys = append(f.keys[:i], f.keys[i+1:]...)
	return true
}

// Upload is a ticket for one in-flight icon upload.
type Upload struct {
	key int
}

// BeginUpload marks an upload for option i as in flight.
func (f *QuestionForm) BeginUpload(i int) (Upload, bool) {
	if !f.IsOpen() || i < 0 || i >= len(f.keys) {
		return Upload{}, false
	}
	k := f.keys[i]
	f.uploading[k] = true
	return Upload{key: k}, true
}

// FinishUpload stores url on the option the upload began for.
func (f *QuestionForm) FinishUpload(u Upload, url string) {
	if !f.uploading[u.key] {
		return
	}
	delete(f.uploading, u.key)
	if i := f.indexOf(u.key); i >= 0 {
		f.fields.Options[i].Icon = url
		notify.Success(f.notifier, MsgIconUploaded)
	}
}

// FailUpload ends an upload without changing the icon.
func (f *QuestionForm) FailUpload(u Upload) {
	if !f.uploading[u.key] {
		return
	}
	delete(f.uploading, u.key)
	notify.Error(f.notifier, MsgUploadFailed)
}

func (f *QuestionForm) indexOf(key int) int {
	for i, k := range f.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Uploading reports whether any icon upload is in flight.
func (f *QuestionForm) Uploading() bool {
	return len(f.uploading) > 0
}

// CanSubmit reports whether the submit action is enabled.
func (f *QuestionForm) CanSubmit() bool {
	return f.IsOpen() && !f.Uploading()
}

// Error returns the message for field, or "".
func (f *QuestionForm) Error(field Field) string {
	return f.errors[field]
}

// Errors returns a copy of the per-field errors.
func (f *QuestionForm) Errors() map[Field]string {
	out := make(map[Field]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Validate checks the fields, records per-field errors and returns the
// payload with blank-label options dropped.
func (f *QuestionForm) Validate() (domain.QuestionInput, bool) {
	f.errors = make(map[Field]string)

	text := strings.TrimSpace(f.fields.Text)
	if text == "" {
		f.errors[FieldText] = MsgTextRequired
	}

	var kept []domain.Option
	for _, o := range f.fields.Options {
		if o.HasLabel() {
			kept = append(kept, domain.Option{Label: strings.TrimSpace(o.Label), Icon: o.Icon})
		}
	}
	if len(kept) < MinOptions {
		f.errors[FieldOptions] = MsgOptionsMinimum
	}

	if len(f.errors) > 0 {
		return domain.QuestionInput{}, false
	}
	return domain.QuestionInput{
		Text:         text,
		QuestionType: f.fields.QuestionType,
		IsLive:       f.fields.IsLive,
		Options:      kept,
	}, true
}

// Submit validates and hands the payload to saver. On success the form
// resets and closes; on failure it stays open with its state intact.
func (f *QuestionForm) Submit(ctx context.Context, saver Saver) error {
	if !f.IsOpen() {
		return adminerrors.New(adminerrors.ErrCodeValidationFailed, "form is not open")
	}
	if f.Uploading() {
		return adminerrors.NewValidationError(adminerrors.ErrCodeValidationUploading, "wait for icon uploads to finish")
	}

	in, ok := f.Validate()
	if !ok {
		notify.Error(f.notifier, MsgFixErrors)
		return f.validationError()
	}

	var err error
	if f.mode == ModeEdit {
		err = saver.UpdateQuestion(ctx, f.editingID, in)
	} else {
		err = saver.CreateQuestion(ctx, in)
	}
	if err != nil {
		return err
	}

	f.Reset()
	return nil
}

func (f *QuestionForm) validationError() error {
	if msg, ok := f.errors[FieldText]; ok {
		return adminerrors.NewValidationError(adminerrors.ErrCodeValidationTextMissing, msg)
	}
	return adminerrors.NewValidationError(adminerrors.ErrCodeValidationOptions, f.errors[FieldOptions])
}

// Cancel discards edits and closes the form.
func (f *QuestionForm) Cancel() {
	f.Reset()
}
