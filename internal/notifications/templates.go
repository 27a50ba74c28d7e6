package notifications

import (
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/kitzone/api/internal/domain"
)

var bgPrinter = message.NewPrinter(language.Bulgarian)

// FormatAmount renders an amount in cents using Bulgarian number formatting.
func FormatAmount(cents int64) string {
	return bgPrinter.Sprintf("%.2f €", float64(cents)/100)
}

// PaymentMethodLabel returns the customer-facing label for a payment method.
func PaymentMethodLabel(method domain.PaymentMethod) string {
	switch method {
	case domain.PaymentMethodCard:
		return "Карта"
	case domain.PaymentMethodCash:
		return "В брой"
	default:
		return string(method)
	}
}

// OrderReference returns the short reference shown to customers: the order
// number when one was assigned, otherwise the first characters of the ID.
func OrderReference(order domain.Order) string {
	if strings.TrimSpace(order.Number) != "" {
		return order.Number
	}
	id := order.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<h2>Благодарим за поръчката!</h2>
<p>Вашата поръчка <strong>{{.Reference}}</strong> беше приета.</p>
<table>
{{range .Items}}<tr><td>{{.Name}}{{if .Size}} ({{.Size}}){{end}}</td><td>{{.Quantity}} × {{.UnitPrice}}</td></tr>
{{end}}</table>
<p>Междинна сума: {{.Subtotal}}<br>
{{if .Discount}}Отстъпка: -{{.Discount}}<br>{{end}}Доставка: {{.Shipping}}<br>
<strong>Общо: {{.Total}}</strong></p>
<p>Начин на плащане: {{.Payment}}</p>
<p>Адрес за доставка: {{.Address}}</p>`))

type confirmationItem struct {
	Name      string
	Size      string
	Quantity  int
	UnitPrice string
}

type confirmationData struct {
	Reference string
	Items     []confirmationItem
	Subtotal  string
	Discount  string
	Shipping  string
	Total     string
	Payment   string
	Address   string
}

// OrderConfirmation renders the customer confirmation email for an order.
func OrderConfirmation(order domain.Order) (subject, html string) {
	data := confirmationData{
		Reference: OrderReference(order),
		Subtotal:  FormatAmount(order.Totals.Subtotal),
		Shipping:  FormatAmount(order.Totals.Shipping),
		Total:     FormatAmount(order.Totals.Total),
		Payment:   PaymentMethodLabel(order.PaymentMethod),
		Address:   formatAddress(order.ShippingAddress),
	}
	if order.Totals.Discount > 0 {
		data.Discount = FormatAmount(order.Totals.Discount)
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, confirmationItem{
			Name:      item.ProductName,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: FormatAmount(item.UnitPrice),
		})
	}

	var out strings.Builder
	if err := orderConfirmationTmpl.Execute(&out, data); err != nil {
		return "", ""
	}
	return "Потвърждение на поръчка " + data.Reference, out.String()
}

var returnRequestTmpl = template.Must(template.New("return_request").Parse(`<h2>Заявка за връщане</h2>
<p>Поръчка: <strong>{{.Reference}}</strong> ({{.OrderID}})</p>
<p>Клиент: {{.Customer}}</p>
<p>Сума: {{.Total}}</p>
{{if .Message}}<p>Съобщение от клиента:</p><blockquote>{{.Message}}</blockquote>{{end}}`))

type returnRequestData struct {
	Reference string
	OrderID   string
	Customer  string
	Total     string
	Message   string
}

// ReturnRequested renders the staff notification sent when a customer asks to
// return a delivered order. The customer profile fills in name and email when
// known; a zero profile falls back to the order's user id.
func ReturnRequested(order domain.Order, customer domain.Profile, customerMessage string) (subject, html string) {
	data := returnRequestData{
		Reference: OrderReference(order),
		OrderID:   order.ID,
		Customer:  customerLine(customer, order.UserID),
		Total:     FormatAmount(order.Totals.Total),
		Message:   strings.TrimSpace(customerMessage),
	}

	var out strings.Builder
	if err := returnRequestTmpl.Execute(&out, data); err != nil {
		return "", ""
	}
	return "Заявка за връщане на поръчка " + data.Reference, out.String()
}

var contactTmpl = template.Must(template.New("contact").Parse(`<h2>Ново съобщение от контактната форма</h2>
<p>От: {{.Name}} &lt;{{.Email}}&gt;</p>
<blockquote>{{.Body}}</blockquote>`))

type contactData struct {
	Name  string
	Email string
	Body  string
}

// ContactMessage renders a contact-form submission forwarded to staff.
func ContactMessage(name, email, body string) (subject, html string) {
	data := contactData{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Body:  strings.TrimSpace(body),
	}

	var out strings.Builder
	if err := contactTmpl.Execute(&out, data); err != nil {
		return "", ""
	}
	return "Съобщение от " + data.Name, out.String()
}

func customerLine(customer domain.Profile, fallbackUID string) string {
	name := strings.TrimSpace(customer.FullName)
	email := strings.TrimSpace(customer.Email)
	switch {
	case name != "" && email != "":
		return name + " <" + email + ">"
	case name != "":
		return name
	case email != "":
		return email
	default:
		return fallbackUID
	}
}

func formatAddress(addr domain.Address) string {
	parts := make([]string, 0, 5)
	for _, part := range []string{addr.FullName, addr.Street, addr.City, addr.PostalCode, addr.Country} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}
