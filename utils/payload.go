// File: /utils/payload.go
package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Payload is a decoded JSON request object. Numbers are kept as json.Number
// so integer coercion can tell 90 from 90.5.
type Payload map[string]interface{}

func init() {
	binding.EnableDecoderUseNumber = true
}

// BindPayload binds the JSON request object; an empty body yields an empty payload.
func BindPayload(c *gin.Context) (Payload, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return Payload{}, nil
	}
	var p Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Payload{}, nil
		}
		return nil, err
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// Present reports whether the field holds a truthy value: not null, false,
// zero, or an empty string, array or object.
func (p Payload) Present(key string) bool {
	return truthy(p[key])
}

func (p Payload) Raw(key string) interface{} {
	return p[key]
}

// Text returns the trimmed string form of a truthy field, or "".
func (p Payload) Text(key string) string {
	return strings.TrimSpace(p.Verbatim(key))
}

// Verbatim returns the untrimmed string form of a truthy field, or "".
// Passwords are read this way.
func (p Payload) Verbatim(key string) string {
	v := p[key]
	if !truthy(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// CoerceInt converts JSON integers, integral floats and decimal strings.
func CoerceInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return clampInt(n)
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	case float64:
		return integralFloat(t)
	case int:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return clampInt(n)
	default:
		return 0, false
	}
}

// Magnitudes beyond coerceLimit are clamped; they are far outside any
// admissible price yet keep their sign for bounds checks.
const coerceLimit = math.MaxInt32

func integralFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	switch {
	case f > coerceLimit:
		return coerceLimit, true
	case f < -coerceLimit:
		return -coerceLimit, true
	}
	return int(f), true
}

func clampInt(n int64) (int, bool) {
	switch {
	case n > coerceLimit:
		return coerceLimit, true
	case n < -coerceLimit:
		return -coerceLimit, true
	}
	return int(n), true
}
