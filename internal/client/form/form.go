// Package form хранит состояние формы создания и редактирования записи.
// Автоматическое извлечение полей из документа применяется только к полям,
// которые пользователь не менял, и только если форма не изменилась за время извлечения.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/validation"
	"github.com/iudanet/wealthvault/pkg/api"
)

// Field имя поля формы; совпадает с ключами ошибок валидации сервера
type Field string

// Form fields
const (
	FieldName         Field = "name"
	FieldKind         Field = "kind"
	FieldPolicyNumber Field = "policy_number"
	FieldPremium      Field = "premium_amount"
	FieldFrequency    Field = "payment_frequency"
	FieldNextDueDate  Field = "next_due_date"
	FieldMaturity     Field = "maturity_date"
	FieldNominee      Field = "nominee_name"
	FieldCoverage     Field = "coverage_amount"
)

// Fields порядок полей при вводе
var Fields = []Field{
	FieldName, FieldKind, FieldPolicyNumber, FieldPremium, FieldFrequency,
	FieldNextDueDate, FieldMaturity, FieldNominee, FieldCoverage,
}

var (
	// ErrStale the form was edited while extraction was running.
	// The document is still attached, only the extracted values are dropped.
	ErrStale = errors.New("form changed during extraction, extracted values discarded")
	// ErrSuperseded a newer extraction was started
	ErrSuperseded = errors.New("extraction superseded by a newer one")
	// ErrCanceled extraction was canceled
	ErrCanceled = errors.New("extraction canceled")
)

// Extractor uploads a document and returns recognized fields
type Extractor func(ctx context.Context) (*api.ExtractionResponse, error)

// Result outcome of an applied extraction
type Result struct {
	Document api.Document
	Applied  []Field // заполненные извлечением поля
	Warning  string
}

// Form состояние формы. Безопасна для конкурентного использования.
type Form struct {
	cancel            context.CancelFunc
	values            map[Field]string
	edited            map[Field]bool
	errors            map[string]string
	documentRefs      []string
	revision          uint64
	generation        uint64
	passwordProtected bool
	mu                sync.Mutex
}

// New returns an empty creation form with default kind and frequency
func New() *Form {
	f := &Form{
		values: map[Field]string{},
		edited: map[Field]bool{},
		errors: map[string]string{},
	}
	f.values[FieldKind] = string(models.KindLIC)
	f.values[FieldFrequency] = string(models.FrequencyYearly)
	return f
}

// FromPolicy returns an edit form prefilled with a record
func FromPolicy(p *api.Policy) *Form {
	f := New()
	f.values[FieldName] = p.Name
	f.values[FieldKind] = p.Kind
	f.values[FieldPolicyNumber] = p.PolicyNumber
	f.values[FieldPremium] = p.PremiumAmount.String()
	f.values[FieldFrequency] = p.PaymentFrequency
	f.values[FieldNextDueDate] = p.NextDueDate
	f.values[FieldMaturity] = p.MaturityDate
	f.values[FieldNominee] = p.NomineeName
	f.values[FieldCoverage] = p.CoverageAmount.String()
	f.documentRefs = append([]string(nil), p.DocumentRefs...)
	f.passwordProtected = p.PasswordProtected
	return f
}

// Get returns the current value of a field
func (f *Form) Get(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Set records a user edit
func (f *Form) Set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = strings.TrimSpace(value)
	f.edited[field] = true
	delete(f.errors, string(field))
	f.revision++
}

// Edited reports whether the user changed the field
func (f *Form) Edited(field Field) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edited[field]
}

// Revision returns the number of user edits so far
func (f *Form) Revision() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revision
}

// SetPasswordProtected marks the attached documents as password protected
func (f *Form) SetPasswordProtected(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordProtected = v
	f.revision++
}

// AttachDocument adds an uploaded document reference
func (f *Form) AttachDocument(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documentRefs = append(f.documentRefs, ref)
}

// DocumentRefs returns attached document references
func (f *Form) DocumentRefs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.documentRefs...)
}

// SetErrors replaces field errors, typically from a 422 response
func (f *Form) SetErrors(fields map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = make(map[string]string, len(fields))
	for k, v := range fields {
		f.errors[k] = v
	}
}

// Error returns the error message of a field, empty if none
func (f *Form) Error(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[string(field)]
}

// Extract runs extractor under a cancellable context and applies its result.
// Starting a new extraction supersedes the running one.
// Extraction errors are returned as is: the form stays usable for manual entry.
func (f *Form) Extract(ctx context.Context, extractor Extractor) (*Result, error) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.generation++
	gen := f.generation
	rev := f.revision
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	defer cancel()
	resp, err := extractor(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen == f.generation {
		f.cancel = nil
	}

	switch {
	case gen != f.generation:
		return nil, ErrSuperseded
	case ctx.Err() != nil:
		return nil, ErrCanceled
	case err != nil:
		return nil, err
	}

	// Документ уже загружен: прикрепляем его даже к измененной форме
	res := &Result{Document: resp.Document, Warning: resp.Warning}
	if resp.Document.Ref != "" {
		f.documentRefs = append(f.documentRefs, resp.Document.Ref)
	}
	if resp.Document.PasswordProtected {
		f.passwordProtected = true
	}
	if f.revision != rev {
		return res, ErrStale
	}

	ex := resp.Extracted
	name := ex.PolicyName
	if name == nil {
		name = ex.CompanyName
	}
	f.fill(res, FieldName, name)
	f.fill(res, FieldPolicyNumber, ex.PolicyNumber)
	f.fill(res, FieldFrequency, ex.Frequency)
	f.fill(res, FieldMaturity, ex.Maturity)
	f.fill(res, FieldNominee, ex.Nominee)
	f.fillAmount(res, FieldPremium, ex.Premium)
	f.fillAmount(res, FieldCoverage, ex.Coverage)

	return res, nil
}

// CancelExtraction stops the running extraction, if any
func (f *Form) CancelExtraction() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Form) fill(res *Result, field Field, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" || f.edited[field] {
		return
	}
	f.values[field] = strings.TrimSpace(*v)
	res.Applied = append(res.Applied, field)
}

func (f *Form) fillAmount(res *Result, field Field, v *decimal.Decimal) {
	if v == nil || v.IsNegative() || f.edited[field] {
		return
	}
	f.values[field] = v.String()
	res.Applied = append(res.Applied, field)
}

// ToRequest converts the form into an API request.
// Unparsable amounts and dates are reported as field errors and stored on the form.
func (f *Form) ToRequest(draft bool) (api.PolicyRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fe := validation.FieldErrors{}
	req := api.PolicyRequest{
		Kind:              f.values[FieldKind],
		Name:              f.values[FieldName],
		PolicyNumber:      f.values[FieldPolicyNumber],
		PaymentFrequency:  f.values[FieldFrequency],
		NextDueDate:       f.values[FieldNextDueDate],
		MaturityDate:      f.values[FieldMaturity],
		NomineeName:       f.values[FieldNominee],
		DocumentRefs:      append([]string{}, f.documentRefs...),
		PasswordProtected: f.passwordProtected,
		Draft:             draft,
	}

	req.PremiumAmount = parseAmount(f.values[FieldPremium], FieldPremium, fe)
	req.CoverageAmount = parseAmount(f.values[FieldCoverage], FieldCoverage, fe)
	if req.NextDueDate != "" {
		if _, err := models.ParseDate(req.NextDueDate); err != nil {
			fe[string(FieldNextDueDate)] = "date must be in YYYY-MM-DD format"
		}
	}

	if len(fe) > 0 {
		f.errors = map[string]string(fe)
		return api.PolicyRequest{}, fe
	}
	return req, nil
}

func parseAmount(s string, field Field, fe validation.FieldErrors) decimal.Decimal {
	// Разделители разрядов допускаются: "1,00,000"
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		fe[string(field)] = "must be a number"
		return decimal.Zero
	}
	return d
}
