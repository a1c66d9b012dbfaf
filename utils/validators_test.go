package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bind(body io.Reader) (Payload, error) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/register", body)
	c.Request.Header.Set("Content-Type", "application/json")
	return BindPayload(c)
}

func payload(t *testing.T, body string) Payload {
	t.Helper()
	p, err := bind(strings.NewReader(body))
	require.NoError(t, err)
	return p
}

func TestBindPayload(t *testing.T) {
	p, err := bind(nil)
	require.NoError(t, err)
	assert.Empty(t, p)

	p, err = bind(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, p)

	p, err = bind(strings.NewReader("null"))
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = bind(strings.NewReader(`{"price":90,"rate":4.5}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("90"), p.Raw("price"))
	assert.Equal(t, json.Number("4.5"), p.Raw("rate"))

	_, err = bind(strings.NewReader(`[1,2]`))
	assert.Error(t, err)

	_, err = bind(strings.NewReader(`{"a":`))
	assert.Error(t, err)
}

func TestPayloadPresence(t *testing.T) {
	p := payload(t, `{"s":"x","blank":"","zero":0,"f":false,"n":null,"arr":[],"obj":{},"num":3,"str0":"0"}`)

	assert.True(t, p.Present("s"))
	assert.True(t, p.Present("num"))
	assert.True(t, p.Present("str0"))
	for _, key := range []string{"blank", "zero", "f", "n", "arr", "obj", "absent"} {
		assert.False(t, p.Present(key), key)
	}
}

func TestPayloadText(t *testing.T) {
	p := payload(t, `{"name":"  bob  ","space":"   ","num":42}`)

	assert.Equal(t, "bob", p.Text("name"))
	assert.Equal(t, "  bob  ", p.Verbatim("name"))
	assert.Equal(t, "", p.Text("space"))
	assert.Equal(t, "42", p.Text("num"))
	assert.Equal(t, "", p.Text("missing"))
}

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{json.Number("90"), 90, true},
		{json.Number("90.0"), 90, true},
		{json.Number("90.5"), 0, false},
		{"120", 120, true},
		{" 7 ", 7, true},
		{"12abc", 0, false},
		{"9.5", 0, false},
		{float64(3), 3, true},
		{true, 0, false},
		{nil, 0, false},
		{[]interface{}{1}, 0, false},
	}
	for _, tc := range cases {
		got, ok := CoerceInt(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "%v", tc.in)
		}
	}

	huge, ok := CoerceInt(json.Number("99999999999999999999"))
	require.True(t, ok)
	assert.Greater(t, huge, 2_000_000)
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.c", "john.doe@mail.example.com"}
	invalid := []string{"", "plain", "a@b", "a@@b.c", "a@b@c.d", "a@", "@"}

	for _, e := range valid {
		assert.True(t, IsValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, IsValidEmail(e), e)
	}
}

func TestCheckLengthCountsRunes(t *testing.T) {
	assert.Nil(t, CheckLength("Name", strings.Repeat("ž", 40), 40, ""))

	r := CheckLength("Name", strings.Repeat("a", 41), 40, FlagData)
	require.NotNil(t, r)
	assert.Equal(t, "Name is too long", r.Message)
	assert.Equal(t, 400, r.Status)
	assert.Equal(t, FlagData, r.Flag)
}

func TestCheckPassword(t *testing.T) {
	assert.Nil(t, CheckPassword("12345678", FlagPassword))

	r := CheckPassword("1234567", FlagPassword)
	require.NotNil(t, r)
	assert.Equal(t, "Password must be at least 8 characters", r.Message)
	assert.Equal(t, FlagPassword, r.Flag)
}

func TestCheckVanPrice(t *testing.T) {
	price, r := CheckVanPrice(json.Number("2000000"), FlagData)
	assert.Nil(t, r)
	assert.Equal(t, 2_000_000, price)

	_, r = CheckVanPrice("cheap", FlagData)
	assert.Equal(t, "Inadmissible price", r.Message)

	_, r = CheckVanPrice(json.Number("0"), FlagData)
	assert.Equal(t, "Price must be positive", r.Message)

	_, r = CheckVanPrice(json.Number("2000001"), FlagData)
	assert.Equal(t, "Price too large", r.Message)
}

func TestParseDate(t *testing.T) {
	d, r := ParseDate("2024-02-29")
	require.Nil(t, r)
	assert.Equal(t, "2024-02-29", d.String())

	for _, in := range []interface{}{"2023-02-29", "29/02/2024", "2024-1-5", json.Number("20240101"), nil} {
		_, r := ParseDate(in)
		require.NotNil(t, r, "%v", in)
		assert.Equal(t, "Invalid date format", r.Message)
	}
}

func TestParseUUID(t *testing.T) {
	id, ok := ParseUUID("3F2504E0-4F89-11D3-9A0C-0305E82C3301")
	assert.True(t, ok)
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", id)

	_, ok = ParseUUID("not-a-uuid")
	assert.False(t, ok)
	_, ok = ParseUUID(json.Number("12"))
	assert.False(t, ok)
	_, ok = ParseUUID(nil)
	assert.False(t, ok)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "John", Capitalize("jOHN"))
	assert.Equal(t, "Émile", Capitalize("émile"))
	assert.Equal(t, "", Capitalize(""))
}
