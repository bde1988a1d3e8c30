// Package validation registers the request field rules on gin's validator
// and turns validation failures into user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	alphaSpaceRegex = regexp.MustCompile(`^[a-zA-Z\s]+$`)

	registerOnce sync.Once
	registerErr  error
)

// Register installs the custom rules on gin's default validator. It is safe
// to call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("validation: unexpected validator engine")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"alphaspace":     alphaSpace,
		"strongpassword": strongPassword,
		"por":            por,
		"httpurl":        httpURL,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validation: register %s: %w", tag, err)
		}
	}
	return nil
}

func alphaSpace(fl validator.FieldLevel) bool {
	return alphaSpaceRegex.MatchString(fl.Field().String())
}

// StrongPassword reports whether s has a lowercase letter, an uppercase
// letter and a digit.
func StrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func strongPassword(fl validator.FieldLevel) bool {
	return StrongPassword(fl.Field().String())
}

func por(fl validator.FieldLevel) bool {
	return len([]rune(strings.TrimSpace(fl.Field().String()))) >= 2
}

// HTTPURL reports whether s is an absolute http or https URL with a host.
func HTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func httpURL(fl validator.FieldLevel) bool {
	return HTTPURL(fl.Field().String())
}

type ruleKey struct {
	field string
	tag   string
}

var messages = map[ruleKey]string{
	{"currentPassword", "required"}:   "Current password is required",
	{"newPassword", "required"}:       "New password is required",
	{"newPassword", "min"}:            "New password must be at least 6 characters long",
	{"newPassword", "strongpassword"}: "New password must contain at least one uppercase letter, one lowercase letter, and one number",
	{"confirmPassword", "eqfield"}:    "Password confirmation does not match new password",
	{"fullname", "min"}:               "Full name must be between 2 and 50 characters",
	{"fullname", "max"}:               "Full name must be between 2 and 50 characters",
	{"fullname", "alphaspace"}:        "Full name can only contain letters and spaces",
	{"collegeName", "min"}:            "College name must be between 2 and 100 characters",
	{"collegeName", "max"}:            "College name must be between 2 and 100 characters",
	{"rollNo", "min"}:                 "Roll number must be between 1 and 20 characters",
	{"rollNo", "max"}:                 "Roll number must be between 1 and 20 characters",
	{"rollNo", "alphanum"}:            "Roll number can only contain letters and numbers",
	{"PORs", "max"}:                   "Cannot have more than 10 PORs",
	{"username", "required"}:          "Username is required",
	{"username", "min"}:               "Username must be between 3 and 50 characters",
	{"username", "max"}:               "Username must be between 3 and 50 characters",
	{"email", "required"}:             "Email is required",
	{"email", "email"}:                "Email must be a valid email address",
	{"password", "required"}:          "Password is required",
	{"password", "min"}:               "Password must be at least 6 characters long",
	{"title", "required"}:             "Title is required",
	{"description", "required"}:       "Description is required",
	{"maxPoints", "required"}:         "Max points is required",
	{"maxPoints", "gt"}:               "Max points must be greater than zero",
	{"proofURLs", "required"}:         "At least one proof URL is required",
	{"proofURLs", "min"}:              "At least one proof URL is required",
	{"pointsAwarded", "required"}:     "Points awarded is required",
	{"pointsAwarded", "gte"}:          "Points awarded cannot be negative",
}

// Message returns the first validation failure in err as a sentence. Errors
// that are not validation failures produce a generic message.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	field, index := splitIndex(fe.Field())
	if index >= 0 {
		switch field {
		case "PORs":
			return fmt.Sprintf("POR at index %d must be a valid string with at least 2 characters", index)
		case "proofURLs":
			return fmt.Sprintf("Proof URL at index %d must be a valid http(s) URL", index)
		}
	}
	if msg, ok := messages[ruleKey{field, fe.Tag()}]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

// splitIndex turns "PORs[3]" into ("PORs", 3). Fields without an index
// return -1.
func splitIndex(field string) (string, int) {
	open := strings.IndexByte(field, '[')
	if open < 0 || !strings.HasSuffix(field, "]") {
		return field, -1
	}
	idx, err := strconv.Atoi(field[open+1 : len(field)-1])
	if err != nil {
		return field, -1
	}
	return field[:open], idx
}
