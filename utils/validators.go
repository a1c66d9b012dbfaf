// File: /utils/validators.go
package utils

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"vanlife-api/models"
)

const MinPasswordLength = 8

// Frontend flags naming the form section a rejection belongs to.
const (
	FlagEmail    = "emailErr"
	FlagPassword = "pwErr"
	FlagData     = "dataMsg"
	FlagImage    = "imgMsg"
	FlagUser     = "userMsg"
	FlagPass     = "passMsg"
)

// Rejection is a client-facing validation failure.
type Rejection struct {
	Status     int
	Message    string
	StatusText string
	Flag       string
}

func (r *Rejection) Error() string {
	return r.Message
}

func Reject(status int, message, statusText, flag string) *Rejection {
	return &Rejection{Status: status, Message: message, StatusText: statusText, Flag: flag}
}

func BadRequest(message, statusText, flag string) *Rejection {
	return Reject(http.StatusBadRequest, message, statusText, flag)
}

func Missing(flag string) *Rejection {
	return BadRequest("Required data missing", "Required data missing", flag)
}

// CheckLength rejects values longer than max runes with "<Field> is too long".
func CheckLength(field, value string, max int, flag string) *Rejection {
	if utf8.RuneCountInString(value) > max {
		return BadRequest(fmt.Sprintf("%s is too long", field), "Data too long", flag)
	}
	return nil
}

// IsValidEmail accepts exactly one '@' followed by a non-empty domain containing a dot.
func IsValidEmail(email string) bool {
	if strings.Count(email, "@") != 1 {
		return false
	}
	domain := email[strings.Index(email, "@")+1:]
	return domain != "" && strings.Contains(domain, ".")
}

func CheckEmail(email, flag string) *Rejection {
	if !IsValidEmail(email) {
		return BadRequest("Invalid email", "Invalid email format", flag)
	}
	return nil
}

func EmailTaken() *Rejection {
	return BadRequest("This email is taken", "Email is not unique", FlagEmail)
}

func CheckPassword(password, flag string) *Rejection {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return BadRequest(
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
			"Improper password", flag)
	}
	return nil
}

func CheckVanType(value string, flag string) (models.VanType, *Rejection) {
	t := models.VanType(value)
	if !t.Valid() {
		return "", BadRequest("Invalid Van type", "Invalid input", flag)
	}
	return t, nil
}

// CheckVanPrice coerces a listing price and enforces 1..MaxPrice.
func CheckVanPrice(v interface{}, flag string) (int, *Rejection) {
	price, ok := CoerceInt(v)
	if !ok {
		return 0, BadRequest("Inadmissible price", "Wrong input", flag)
	}
	if price < 1 {
		return 0, BadRequest("Price must be positive", "Wrong input", flag)
	}
	if price > models.MaxPrice {
		return 0, BadRequest("Price too large", "Invalid price", flag)
	}
	return price, nil
}

// ParseDate accepts only YYYY-MM-DD strings.
func ParseDate(v interface{}) (models.Date, *Rejection) {
	s, ok := v.(string)
	if !ok {
		return models.Date{}, BadRequest("Invalid date format", "Inadmissible date", "")
	}
	d, err := models.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return models.Date{}, BadRequest("Invalid date format", "Inadmissible date", "")
	}
	return d, nil
}

// ParseUUID returns the canonical form of a string UUID.
func ParseUUID(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func InvalidUUID() *Rejection {
	return BadRequest("Invalid UUID", "Invalid UUID format", "")
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
