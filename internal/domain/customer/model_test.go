package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/types"
)

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("+998 (90) 123-45-67")
	require.NoError(t, err)
	assert.Equal(t, "998901234567", got)

	_, err = NormalizePhone(" - ")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	got, err = NormalizePhone("٣٣٣ 12")
	require.NoError(t, err)
	assert.Equal(t, "12", got, "only ASCII digits count")
}

func TestLoyaltyTier(t *testing.T) {
	cases := map[string]Tier{
		"0":          TierNew,
		"499999.99":  TierNew,
		"500000":     TierBronze,
		"999999":     TierBronze,
		"1000000":    TierSilver,
		"5000000":    TierGold,
		"9999999.99": TierGold,
		"10000000":   TierDiamond,
	}
	for amount, want := range cases {
		assert.Equal(t, want, LoyaltyTier(types.MustMoney(amount)), amount)
	}
}

func TestCustomerValidate(t *testing.T) {
	c := &Customer{FirstName: "A", CustomerType: TypeRegular}
	require.NoError(t, c.Validate())

	bad := GenderMale + "x"
	c.Gender = &bad
	assert.True(t, apperror.HasCode(c.Validate(), apperror.CodeValidation))

	c.Gender = nil
	c.CustomerType = "reseller"
	assert.True(t, apperror.HasCode(c.Validate(), apperror.CodeValidation))
}
