// Package validation checks JSON request bodies against declarative schemas
// and reports the first violation as a human readable message.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

const passwordRegexString = `^[a-zA-Z0-9]{5,30}$`

var passwordRegex = regexp.MustCompile(passwordRegexString)

var (
	defaultValidator = validator.New()
	defaultEn        = en.New()
	uni              = ut.New(defaultEn, defaultEn)
	trans, _         = uni.GetTranslator(defaultEn.Locale())
)

// Message keys that are not validator tags.
const (
	msgRequired   = "required"
	msgEmpty      = "empty"
	msgString     = "string"
	msgUnknown    = "unknown"
	msgObject     = "object"
	msgEqualField = "eqcsfield"
)

// Error is a single schema violation.
type Error struct {
	Field   string
	Tag     string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Field describes one body key. Rules is a validator tag applied to the
// (possibly lowercased) string value. Ref names a field whose value this one
// must repeat.
type Field struct {
	Name      string
	Required  bool
	Rules     string
	Lowercase bool
	Ref       string
}

type Schema []Field

var (
	Register = Schema{
		{Name: "email", Required: true, Rules: "email", Lowercase: true},
		{Name: "password", Required: true, Rules: "password"},
		{Name: "confirmPassword", Required: true, Ref: "password"},
	}
	Login = Schema{
		{Name: "email", Required: true, Rules: "email", Lowercase: true},
		{Name: "password", Required: true, Rules: "password"},
	}
	CreateDocument = Schema{
		{Name: "title", Required: true},
		{Name: "author", Required: true},
		{Name: "summary", Required: true},
	}
	UpdateDocument = Schema{
		{Name: "title"},
		{Name: "author"},
		{Name: "summary"},
	}
)

// Validate checks raw against the schema and returns the accepted values.
// An empty body is treated as an empty object.
func (s Schema) Validate(raw []byte) (map[string]string, error) {
	body := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil || body == nil {
			return nil, violation("value", msgObject, "")
		}
	}

	out := make(map[string]string, len(s))
	known := make(map[string]struct{}, len(s))
	for _, f := range s {
		known[f.Name] = struct{}{}

		rawValue, ok := body[f.Name]
		if !ok {
			if f.Required {
				return nil, violation(f.Name, msgRequired, "")
			}
			continue
		}

		var v string
		if err := json.Unmarshal(rawValue, &v); err != nil || bytes.Equal(bytes.TrimSpace(rawValue), []byte("null")) {
			return nil, violation(f.Name, msgString, "")
		}
		if v == "" {
			return nil, violation(f.Name, msgEmpty, "")
		}
		if f.Lowercase {
			v = strings.ToLower(v)
		}

		if f.Rules != "" {
			if err := defaultValidator.Var(v, f.Rules); err != nil {
				return nil, fromValidator(f.Name, err)
			}
		}
		if f.Ref != "" {
			if err := defaultValidator.VarWithValue(v, out[f.Ref], msgEqualField); err != nil {
				return nil, violation(f.Name, msgEqualField, f.Ref)
			}
		}
		out[f.Name] = v
	}

	for _, k := range keyOrder(raw) {
		if _, ok := known[k]; !ok {
			return nil, violation(k, msgUnknown, "")
		}
	}

	return out, nil
}

// Decode validates raw and fills dst (a pointer to a request struct with
// matching json tags) from the accepted values.
func (s Schema) Decode(raw []byte, dst any) error {
	values, err := s.Validate(raw)
	if err != nil {
		return err
	}
	clean, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode validated body: %w", err)
	}
	if err := json.Unmarshal(clean, dst); err != nil {
		return fmt.Errorf("decode validated body: %w", err)
	}
	return nil
}

// keyOrder lists the top-level keys of a JSON object in the order they appear.
func keyOrder(raw []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}

func fromValidator(field string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return violation(field, fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return violation(field, msgString, "")
}

func violation(field, tag, param string) *Error {
	msg, err := trans.T(tag, `"`+field+`"`, param)
	if err != nil {
		msg = fmt.Sprintf("%q is invalid", field)
	}
	return &Error{Field: field, Tag: tag, Message: msg}
}

func init() {
	if err := defaultValidator.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return passwordRegex.MatchString(fl.Field().String())
	}); err != nil {
		fmt.Fprintln(os.Stderr, "validation password:", err)
		os.Exit(1)
	}

	messages := map[string]string{
		msgRequired:   "{0} is required",
		msgEmpty:      "{0} is not allowed to be empty",
		msgString:     "{0} must be a string",
		msgUnknown:    "{0} is not allowed",
		msgObject:     "{0} must be of type object",
		msgEqualField: "{0} must be [ref:{1}]",
		"email":       "{0} must be a valid email",
		"password":    "{0} with value \"{1}\" fails to match the required pattern: /" + passwordRegexString + "/",
	}
	for key, text := range messages {
		if err := trans.Add(key, text, true); err != nil {
			fmt.Fprintln(os.Stderr, "validation translation", key+":", err)
			os.Exit(1)
		}
	}
}
