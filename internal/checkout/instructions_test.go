package checkout

import (
	"strings"
	"testing"

	"checkout-be/internal/order"

	"github.com/stretchr/testify/assert"
)

func TestGetInstructions(t *testing.T) {
	t.Run("EveryMethodHasSteps", func(t *testing.T) {
		for _, m := range []order.PaymentMethod{
			order.PaymentMethodCardGateway,
			order.PaymentMethodRegionalGateway,
			order.PaymentMethodCashOnDelivery,
		} {
			steps := GetInstructions(m)
			assert.NotEmpty(t, steps, m)
			assert.True(t, strings.Contains(strings.Join(steps, "\n"), "{{amount}}"), m)
		}
	})

	t.Run("ReturnsDefaultForUnknown", func(t *testing.T) {
		steps := GetInstructions(order.PaymentMethod("PayPal"))
		assert.Len(t, steps, 1)
	})
}

func TestInjectVariables(t *testing.T) {
	t.Run("ReplacesPlaceholders", func(t *testing.T) {
		template := []string{"Pay {{amount}} for order {{order_id}}, {{amount}} total."}
		vars := InstructionVars{
			"amount":   "20.00 USD",
			"order_id": "ord-1",
		}

		result := InjectVariables(template, vars)

		assert.Equal(t, []string{"Pay 20.00 USD for order ord-1, 20.00 USD total."}, result)
	})

	t.Run("HandlesMissingVariables", func(t *testing.T) {
		result := InjectVariables([]string{"Pay {{amount}}"}, InstructionVars{})
		assert.Equal(t, "Pay {{amount}}", result[0])
	})

	t.Run("DoesNotMutateTemplate", func(t *testing.T) {
		template := GetInstructions(order.PaymentMethodCashOnDelivery)
		_ = InjectVariables(template, InstructionVars{"amount": "1.00 USD"})
		assert.Contains(t, strings.Join(GetInstructions(order.PaymentMethodCashOnDelivery), ""), "{{amount}}")
	})
}
