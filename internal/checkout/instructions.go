package checkout

import (
	"strings"

	"checkout-be/internal/order"
)

var instructionMap = map[order.PaymentMethod][]string{
	order.PaymentMethodCardGateway: {
		"Enter your card details in the secure card form",
		"Check that the amount {{amount}} is correct",
		"Complete the 3D Secure step if your bank asks for it",
		"Keep this page open until the payment is confirmed",
	},

	order.PaymentMethodRegionalGateway: {
		"Press Pay to open the checkout window",
		"Choose UPI, card, netbanking or a wallet",
		"Approve the payment of {{amount}} in your app",
		"Keep this page open until the payment is confirmed",
	},

	order.PaymentMethodCashOnDelivery: {
		"Order {{order_id}} will be shipped to your address",
		"Prepare {{amount}} in cash for the courier",
		"Pay the courier directly and keep the receipt",
	},
}

func GetInstructions(method order.PaymentMethod) []string {
	if steps, ok := instructionMap[method]; ok {
		return steps
	}

	return []string{
		"Follow the payment instructions shown on this page",
	}
}

type InstructionVars map[string]string

// InjectVariables fills {{name}} placeholders. Unknown placeholders are left
// as they are.
func InjectVariables(steps []string, vars InstructionVars) []string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	r := strings.NewReplacer(pairs...)

	result := make([]string, len(steps))
	for i, step := range steps {
		result[i] = r.Replace(step)
	}
	return result
}
