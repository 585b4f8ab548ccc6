package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
)

type contact struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

type signup struct {
	Name    string  `json:"name" validate:"required,max=5"`
	Contact contact `json:"contact"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func details(t *testing.T, err error) map[string]any {
	t.Helper()
	var perr *pkgerrors.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pkgerrors.CodeValidation, perr.Code())
	d, _ := perr.Details().(map[string]any)
	return d
}

func TestDecodeJSONBodyValidatesNestedFields(t *testing.T) {
	var dest signup
	err := DecodeJSONBody(post(`{"name":"Adaeze","contact":{"email":"nope","phone":"abc"}}`), &dest)

	assert.Equal(t, map[string]any{
		"name":          "must be at most 5",
		"contact.email": "must be a valid email",
		"contact.phone": "must be a valid phone number",
	}, details(t, err))
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	var dest signup
	require.NoError(t, DecodeJSONBody(post(`{"name":"Ada","contact":{"email":"ada@example.com","phone":"+234 (801) 234-5678"}}`), &dest))
	assert.Equal(t, "Ada", dest.Name)
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]struct {
		body string
		key  string
	}{
		"unknown field": {`{"name":"Ada","age":3}`, "age"},
		"wrong type":    {`{"name":7}`, "name"},
		"syntax":        {`{"name":`, "error"},
		"trailing doc":  {`{"name":"Ada","contact":{"email":"a@b.co"}} {}`, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var dest signup
			err := DecodeJSONBody(post(tc.body), &dest)
			require.Error(t, err)
			if tc.key != "" {
				assert.Contains(t, details(t, err), tc.key)
			}
		})
	}
}

func TestDecodeJSONBodyEmptyAndOversized(t *testing.T) {
	var dest signup
	err := DecodeJSONBody(post(""), &dest)
	assert.ErrorContains(t, err, "empty")

	big := `{"name":"` + strings.Repeat("a", MaxJSONBodyBytes) + `"}`
	err = DecodeJSONBody(post(big), &dest)
	assert.Equal(t, MaxJSONBodyBytes, details(t, err)["max_bytes"])
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  gold   hoops \n", 0, "gold hoops"},
		{"ring\x00\x07s", 0, "rings"},
		{"café", 0, "café"},
		{"silver chain", 6, "silver"},
		{"ab cd", 3, "ab"},
		{"\t\t", 10, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeString(tc.in, tc.max), "%q", tc.in)
	}
}
