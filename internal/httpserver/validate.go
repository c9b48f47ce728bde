package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// fieldErrors maps a JSON field name to a human readable message. It is the
// 400 response body.
type fieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

var errTrailingData = errors.New("unexpected data after the request body")

// decodeBody fills dst from a JSON object or form-urlencoded body. Fields
// are decoded one at a time so a bad value does not hide the others; their
// errors come back joined. An empty JSON body yields io.EOF.
func decodeBody(r *http.Request, dst any) error {
	fields := map[string]json.RawMessage{}
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return err
		}
		for k := range r.PostForm {
			v, err := json.Marshal(r.PostForm.Get(k))
			if err != nil {
				return err
			}
			fields[k] = v
		}
	} else {
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&fields); err != nil {
			return err
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return errTrailingData
		}
	}

	var errs []error
	for k, v := range fields {
		one, err := json.Marshal(map[string]json.RawMessage{k: v})
		if err != nil {
			return err
		}
		if err := json.Unmarshal(one, dst); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// decodeAndValidate fills dst from the request body and runs struct
// validation. An empty body decodes as {}. It returns nil when the request is
// valid.
func decodeAndValidate(r *http.Request, dst any) fieldErrors {
	errs := fieldErrors{}

	if err := decodeBody(r, dst); err != nil && !errors.Is(err, io.EOF) {
		for _, e := range unjoin(err) {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(e, &typeErr) || typeErr.Field == "" {
				return fieldErrors{"body": "body must be a JSON object"}
			}
			errs[typeErr.Field] = typeErr.Field + " must be " + kindName(typeErr.Type)
		}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fieldErrors{"body": "invalid request"}
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			errs[fe.Field()] = fieldMessage(fe)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "notblank":
		return fe.Field() + " must not be empty"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	default:
		return "a " + t.Kind().String()
	}
}

// intValue is an integer request field. Besides JSON integers it accepts
// integral numbers such as 1.0 and integer strings such as "1", which is how
// form bodies carry it. An empty string leaves it zero.
type intValue int64

func (v *intValue) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = intValue(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
		*v = intValue(f)
		return nil
	}
	return &json.UnmarshalTypeError{Value: s, Type: reflect.TypeOf(int64(0))}
}
