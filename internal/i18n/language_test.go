package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require.Equal(t, English, Parse("en-US", Arabic))
	require.Equal(t, Arabic, Parse("ar-SA", English))
	require.Equal(t, Arabic, Parse("", Arabic))
	require.Equal(t, English, Parse("not a tag!!", English))
}

func TestFromAcceptLanguage(t *testing.T) {
	require.Equal(t, English, FromAcceptLanguage("fr-CH, en;q=0.9, ar;q=0.5", Arabic))
	require.Equal(t, Arabic, FromAcceptLanguage("ar,en;q=0.8", English))
	require.Equal(t, English, FromAcceptLanguage("", English))
}

func TestMessages(t *testing.T) {
	en := For(English)
	require.Equal(t, `"Tea" quantity increased from 2 to 5 items`, en.QuantityIncreased("Tea", 2, 5))
	require.Equal(t, `"Tea" added to cart successfully!`, en.ItemAdded("Tea"))
	require.Equal(t, "Add 1 more item for free shipping!", en.ItemsNeeded(1))
	require.Equal(t, "Add 3 more items for free shipping!", en.ItemsNeeded(3))
	require.Equal(t, "2 of 5 items", en.Progress(2, 5))
	require.Equal(t, "12.00 SAR", en.Amount("12.00", "sar"))

	ar := For(Arabic)
	require.Equal(t, "12.00 ريال", ar.Amount("12.00", "SAR"))
	require.Equal(t, "USD", ar.Currency("usd"))
	require.Equal(t, ar, For(Language("xx")))
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart?lang=en", nil)
	req.Header.Set("X-Cart-Lang", "ar")
	require.Equal(t, English, FromRequest(req, Arabic))

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-Cart-Lang", "ar")
	req.Header.Set("Accept-Language", "en")
	require.Equal(t, Arabic, FromRequest(req, English))

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Accept-Language", "en-GB")
	require.Equal(t, English, FromRequest(req, Arabic))

	require.Equal(t, Arabic, FromRequest(httptest.NewRequest(http.MethodGet, "/cart", nil), Arabic))
}
