package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

// Validator checks request messages against their `validate` tags and reports
// failures in plain English.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator builds a Validator that understands decimal amounts.
func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names, which are what clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("money", validMoney); err != nil {
		return nil, fmt.Errorf("failed to register money validation: %w", err)
	}

	eng := en.New()
	uni := ut.New(eng, eng)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}
	err := v.RegisterTranslation("money", trans,
		func(t ut.Translator) error {
			return t.Add("money", "{0} must be a positive amount with at most two decimal places", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("money", fe.Field())
			return msg
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register money translation: %w", err)
	}

	return &Validator{validate: v, translator: trans}, nil
}

// validMoney accepts positive amounts with at most two decimal places.
func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2))
}

// Check validates msg and returns a CodeInvalidArgument error describing every
// failing field.
func (v *Validator) Check(msg any) error {
	err := v.validate.Struct(msg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	translated := errs.Translate(v.translator)
	fields := make([]string, 0, len(translated))
	for field := range translated {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, len(fields))
	for i, field := range fields {
		messages[i] = translated[field]
	}
	return connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(messages, "; ")))
}
