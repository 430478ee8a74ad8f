package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/strcase"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// patternRule is a string tag backed by a regular expression.
type patternRule struct {
	tag     string
	re      *regexp.Regexp
	message string
}

var patternRules = []patternRule{
	{
		// numeric chat ID (negative for groups) or a public @username
		tag:     "chat_id",
		re:      regexp.MustCompile(`^(-?[0-9]+|@[A-Za-z][A-Za-z0-9_]{4,31})$`),
		message: "{0} must be a numeric chat id or an @username",
	},
	{
		// <bot id>:<secret> as issued by BotFather
		tag:     "bot_token",
		re:      regexp.MustCompile(`^[0-9]{3,}:[A-Za-z0-9_-]{30,}$`),
		message: "{0} must look like <bot id>:<secret>",
	},
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator builds a validator with English messages and the pattern
// rules above registered as tags.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	enTrans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	for _, rule := range patternRules {
		if err := registerPattern(validate, enTrans, rule); err != nil {
			return nil, fmt.Errorf("register %s: %w", rule.tag, err)
		}
	}

	return &V10Validator{validate: validate, translator: enTrans}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
// Nested fields are keyed by their snake_case leaf name.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return errV10
}

func registerPattern(validate *validator.Validate, trans ut.Translator, rule patternRule) error {
	err := validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && rule.re.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(rule.tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(rule.tag, rule.message, false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("failed to translate validation error", "tag", fe.Tag(), "field", fe.Field(), "error", err)
				return fe.Error()
			}
			return t
		},
	)
}
