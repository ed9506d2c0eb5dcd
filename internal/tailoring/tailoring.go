// Package tailoring decides whether a CV-tailoring request has everything it
// needs: an accepted CV upload, a long enough job description and an optional
// custom prompt.
package tailoring

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/upload"
)

// MinJobDescriptionLength is the number of characters, after trimming, a job
// description needs before a CV can be generated.
const MinJobDescriptionLength = 150

// MaxPromptLength bounds the custom prompt.
const MaxPromptLength = 2000

// DefaultPrompt is used when the custom prompt is empty or reset.
const DefaultPrompt = "Tailor the CV to the job description. Keep every fact from the original CV, " +
	"emphasize matching skills and experience, and quantify impact where the CV already provides numbers."

// Reasons shown to the user, in the order they are checked.
const (
	ReasonNoUpload      = "Please upload your CV"
	ReasonUploadPending = "Your CV is being validated. Please wait."
	ReasonReady         = "Generate tailored CV"
)

// Request is what the frontend holds when the user presses "Generate CV".
type Request struct {
	UploadID       string `json:"upload_id" validate:"omitempty,uuid"`
	JobDescription string `json:"job_description"`
	Prompt         string `json:"prompt" validate:"max=2000"`
}

// Readiness is the outcome of Check.
type Readiness struct {
	Ready                bool     `json:"ready"`
	Reason               string   `json:"reason"`
	JobDescriptionLength int      `json:"job_description_length"`
	Keywords             []string `json:"keywords"`
	Prompt               string   `json:"prompt"`
	CustomPrompt         bool     `json:"custom_prompt"`
}

// UploadLookup resolves upload IDs. *upload.Registry satisfies it.
type UploadLookup interface {
	Get(id uuid.UUID) (upload.File, bool)
}

var validate = newValidator()

// newValidator reports JSON field names so errors match what clients sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field formats. It does not judge readiness.
func (r *Request) Validate() error {
	return validate.Struct(r)
}

// Check validates req and reports whether a tailored CV can be generated.
func Check(req Request, uploads UploadLookup) (*Readiness, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	jdLen := utf8.RuneCountInString(strings.TrimSpace(req.JobDescription))
	prompt, custom := EffectivePrompt(req.Prompt)
	result := &Readiness{
		JobDescriptionLength: jdLen,
		Keywords:             keywords.Extract(ingestion.FromText(req.JobDescription).Text),
		Prompt:               prompt,
		CustomPrompt:         custom,
	}

	switch {
	case req.UploadID == "":
		result.Reason = ReasonNoUpload
	case !known(uploads, req.UploadID):
		result.Reason = ReasonUploadPending
	case jdLen < MinJobDescriptionLength:
		result.Reason = JobDescriptionReason(jdLen)
	default:
		result.Ready = true
		result.Reason = ReasonReady
	}
	return result, nil
}

// JobDescriptionReason is the message for a job description of n characters
// that is too short.
func JobDescriptionReason(n int) string {
	return fmt.Sprintf("Please enter at least %d characters in the job description (%d/%d)",
		MinJobDescriptionLength, n, MinJobDescriptionLength)
}

// EffectivePrompt returns the prompt to use and whether it is a custom one.
// A blank prompt means "reset to default".
func EffectivePrompt(prompt string) (string, bool) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return DefaultPrompt, false
	}
	return trimmed, true
}

func known(uploads UploadLookup, id string) bool {
	if uploads == nil {
		return false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	_, ok := uploads.Get(parsed)
	return ok
}
