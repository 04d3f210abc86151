package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"relytailors-be/internal/order"
)

var orderPlacedTmpl = template.Must(template.New("order_placed").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
  <h2>Thank you for your order{{with .Name}}, {{.}}{{end}}!</h2>
  <p>We have received order <strong>{{.OrderNumber}}</strong> and will confirm it shortly.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.Name}}{{range $k, $v := .SelectedCustomizations}}<br><small>{{$k}}: {{$v}}</small>{{end}}</td>
      <td align="right">{{.Quantity}}</td>
      <td align="right">{{printf "%.2f" .Price}}</td>
    </tr>
    {{end}}
  </table>
  <p><strong>Total: {{printf "%.2f" .Total}}</strong></p>
  <p>Shipping to:<br>
    {{.Address.FullName}}<br>
    {{.Address.AddressLine1}}<br>
    {{with .Address.AddressLine2}}{{.}}<br>{{end}}
    {{.Address.City}}, {{.Address.State}} {{.Address.PostalCode}}
  </p>
  <p>Rely Tailors</p>
</body>
</html>`))

var statusChangedTmpl = template.Must(template.New("status_changed").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
  <h2>Your order {{.OrderNumber}} is now {{.Status}}</h2>
  {{if eq .Status "Confirmed"}}<p>Our tailors have started preparing your garments.</p>{{end}}
  {{if eq .Status "Shipped"}}<p>Your parcel is on its way.</p>{{end}}
  {{if eq .Status "Completed"}}<p>Your order is complete and marked as paid. We hope you love it.</p>{{end}}
  {{if eq .Status "Cancelled"}}<p>Your order has been cancelled. Reply to this email if this is unexpected.</p>{{end}}
  <p>Rely Tailors</p>
</body>
</html>`))

type orderView struct {
	Name        string
	OrderNumber string
	Status      string
	Items       []order.OrderItem
	Total       float64
	Address     order.ShippingAddress
}

func newOrderView(o *order.Order) orderView {
	return orderView{
		Name:        o.Owner.Name,
		OrderNumber: o.OrderNumber,
		Status:      string(o.OrderStatus),
		Items:       o.Items,
		Total:       o.TotalPrice,
		Address:     o.ShippingAddress,
	}
}

// RenderOrderPlaced returns the subject and body of the order confirmation.
func RenderOrderPlaced(o *order.Order) (string, string, error) {
	var buf bytes.Buffer
	if err := orderPlacedTmpl.Execute(&buf, newOrderView(o)); err != nil {
		return "", "", fmt.Errorf("render order placed: %w", err)
	}
	return fmt.Sprintf("Order %s received", o.OrderNumber), buf.String(), nil
}

func RenderStatusChanged(o *order.Order) (string, string, error) {
	var buf bytes.Buffer
	if err := statusChangedTmpl.Execute(&buf, newOrderView(o)); err != nil {
		return "", "", fmt.Errorf("render status update: %w", err)
	}
	return fmt.Sprintf("Order %s: %s", o.OrderNumber, o.OrderStatus), buf.String(), nil
}
