package models

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MinAge = 0
	MaxAge = 150
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Age       int       `db:"age" json:"age"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Fields holds the user attributes a caller supplied. A missing key was not
// supplied, a key mapped to nil was supplied as null.
type Fields map[string]any

// FieldsFromJSON keeps only the user attributes of a decoded JSON object.
// Numbers are expected as json.Number.
func FieldsFromJSON(body map[string]any) Fields {
	f := Fields{}
	for _, key := range []string{"name", "email", "age"} {
		if v, ok := body[key]; ok {
			f[key] = v
		}
	}
	return f
}

// FieldsFromForm converts a form-encoded body. Every value is a string, so a
// form-supplied age never validates.
func FieldsFromForm(form url.Values) Fields {
	f := Fields{}
	for _, key := range []string{"name", "email", "age"} {
		if _, ok := form[key]; ok {
			f[key] = form.Get(key)
		}
	}
	return f
}

// Merge overlays changes on the stored values of existing.
func Merge(existing User, changes Fields) Fields {
	merged := Fields{
		"name":  existing.Name,
		"email": existing.Email,
		"age":   existing.Age,
	}
	for k, v := range changes {
		if _, ok := merged[k]; ok {
			merged[k] = v
		}
	}
	return merged
}

type Validation struct {
	Valid  bool
	Errors []string
}

// Validate checks every rule independently and reports the violations in
// name, email, age order.
func Validate(f Fields) Validation {
	var errs []string

	name, ok := f["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		errs = append(errs, "Name is required and must be a non-empty string")
	}

	email, ok := f["email"].(string)
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		errs = append(errs, "Email is required and must be a string")
	} else if !emailPattern.MatchString(email) {
		errs = append(errs, "Email must be a valid email address")
	}

	age, present := f["age"]
	if !present || age == nil {
		errs = append(errs, "Age is required")
	} else if n, ok := integer(age); !ok {
		errs = append(errs, "Age must be an integer")
	} else if n < MinAge || n > MaxAge {
		errs = append(errs, "Age must be between 0 and 150")
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// Changes is the normalized write set of an update or insert. Nil pointers
// are columns left untouched.
type Changes struct {
	Name  *string
	Email *string
	Age   *int
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Age == nil
}

// Changes normalizes the supplied attributes. Call it only once the merged
// candidate validated; values of the wrong type are skipped.
func (f Fields) Changes() Changes {
	var c Changes
	if v, ok := f["name"].(string); ok {
		name := NormalizeName(v)
		c.Name = &name
	}
	if v, ok := f["email"].(string); ok {
		email := NormalizeEmail(v)
		c.Email = &email
	}
	if v, ok := f["age"]; ok {
		if n, ok := integer(v); ok {
			age := int(n)
			c.Age = &age
		}
	}
	return c
}

func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// integer reports whether v is a number with an integral value. Strings are
// never coerced.
func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatInteger(f)
	case float64:
		return floatInteger(n)
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func floatInteger(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// Whole numbers past int64 are still integers; clamping keeps them out of
	// every valid range.
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}

// ParseID parses a path id. Only positive integers name a row.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
