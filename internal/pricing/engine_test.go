package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

var basePolicy = Policy{DeliveryFee: MoneyFromInt(2), FreeShippingThreshold: 5, FeeMode: FeeWaived}

func TestComputeBelowThreshold(t *testing.T) {
	summary := Compute([]Item{{Qty: 1, UnitPrice: MoneyFromInt(10)}}, basePolicy)
	require.Equal(t, "10.00", summary.Subtotal.String())
	require.Equal(t, "2.00", summary.DeliveryFee.String())
	require.Equal(t, "12.00", summary.Total.String())
	require.Equal(t, 4, summary.ItemsNeeded)
	require.False(t, summary.FreeShipping)
	require.InDelta(t, 0.2, summary.Progress, 1e-9)
}

func TestComputeWaivesFeeAtThreshold(t *testing.T) {
	summary := Compute([]Item{
		{Qty: 2, UnitPrice: MustParse("3.50")},
		{Qty: 3, UnitPrice: MustParse("1.25")},
	}, basePolicy)
	require.Equal(t, 5, summary.ItemCount)
	require.Equal(t, "10.75", summary.Subtotal.String())
	require.True(t, summary.FreeShipping)
	require.True(t, summary.DeliveryFee.IsZero())
	require.Equal(t, "10.75", summary.Total.String())
	require.Zero(t, summary.ItemsNeeded)
	require.Equal(t, 1.0, summary.Progress)
}

func TestComputeProgressClamped(t *testing.T) {
	summary := Compute([]Item{{Qty: 12, UnitPrice: MoneyFromInt(1)}}, basePolicy)
	require.Equal(t, 1.0, summary.Progress)
}

func TestComputeFlatFee(t *testing.T) {
	policy := basePolicy
	policy.FeeMode = FeeFlat
	summary := Compute([]Item{{Qty: 9, UnitPrice: MoneyFromInt(1)}}, policy)
	require.False(t, summary.FreeShipping)
	require.Equal(t, "2.00", summary.DeliveryFee.String())
	require.Equal(t, "11.00", summary.Total.String())
	require.Zero(t, summary.ItemsNeeded)
	require.Zero(t, summary.Progress)
}

func TestComputeEmpty(t *testing.T) {
	summary := Compute(nil, basePolicy)
	require.Zero(t, summary.ItemCount)
	require.True(t, summary.Subtotal.IsZero())
	require.Equal(t, "2.00", summary.Total.String())
	require.Equal(t, 5, summary.ItemsNeeded)
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: MustParse("7.5")})
	require.NoError(t, err)
	require.JSONEq(t, `{"price":7.50}`, string(data))

	var decoded struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"4.20","b":3,"c":null}`), &decoded))
	require.Equal(t, "4.20", decoded.A.String())
	require.Equal(t, "3.00", decoded.B.String())
	require.True(t, decoded.C.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &decoded))
}

func TestParseFeeMode(t *testing.T) {
	mode, err := ParseFeeMode("")
	require.NoError(t, err)
	require.Equal(t, FeeWaived, mode)

	mode, err = ParseFeeMode(" FLAT ")
	require.NoError(t, err)
	require.Equal(t, FeeFlat, mode)

	_, err = ParseFeeMode("tiered")
	require.Error(t, err)
}
