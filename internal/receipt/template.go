package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"strings"
	"time"

	"checkout-be/internal/order"
	"checkout-be/internal/utils"

	"github.com/shopspring/decimal"
)

const subject = "Purchase Receipt"

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"lineTotal": func(it order.Item) string {
		return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2)
	},
}).Parse(`<!DOCTYPE html>
<html>
<body>
<h1>Thanks for your purchase!</h1>
<p>Receipt {{.Number}}<br>Order {{.Order.ID}}<br>Paid {{.PaidAt}}</p>
<table>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{money .Price}}</td><td>{{lineTotal .}}</td></tr>
{{end}}</table>
<p>Items: {{money .Order.ItemsPrice}} {{.Order.Currency}}</p>
<p>Tax: {{money .Order.TaxPrice}} {{.Order.Currency}}</p>
<p>Shipping: {{money .Order.ShippingPrice}} {{.Order.Currency}}</p>
<p><strong>Total: {{money .Order.TotalPrice}} {{.Order.Currency}}</strong></p>
{{with .Order.ShippingAddress}}<p>Ships to {{.FullName}}, {{.Street}}, {{.City}} {{.PostalCode}}, {{.Country}}</p>{{end}}
</body>
</html>
`))

type receiptView struct {
	Number string
	Order  *order.Order
	PaidAt string
}

// recipient prefers the email the provider reported for the payer.
func recipient(o *order.Order) string {
	if o.PaymentResult != nil && o.PaymentResult.PayerEmail != "" {
		return o.PaymentResult.PayerEmail
	}
	return o.UserEmail
}

// buildMessage renders the full RFC 5322 message for a paid order.
func buildMessage(from, to string, o *order.Order) ([]byte, error) {
	if !o.IsPaid || o.PaidAt == nil {
		return nil, ErrOrderNotPaid
	}

	var body bytes.Buffer
	err := receiptTmpl.Execute(&body, receiptView{
		Number: utils.GenerateReceiptNumber(o.ID, *o.PaidAt),
		Order:  o,
		PaidAt: o.PaidAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return []byte(msg.String()), nil
}
