package payments

import (
	"html/template"
	"net/http"

	"github.com/chris/store-payments/pkg/logging"
	"go.uber.org/zap"
)

type page struct {
	Title       string
	Heading     string
	Description string
	Color       template.CSS
	MessageType string
	OrderID     string
	Status      string
}

var pageTemplate = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, Roboto, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: #f5f5f5; }
.card { background: #fff; border-radius: 12px; padding: 32px; text-align: center; max-width: 360px; }
h1 { color: {{.Color}}; font-size: 22px; }
p { color: #555; }
</style>
</head>
<body>
<div class="card">
<h1>{{.Heading}}</h1>
<p>{{.Description}}</p>
{{if .OrderID}}<p>Order: {{.OrderID}}</p>{{end}}
</div>
<script>
(function () {
  var message = JSON.stringify({ type: {{.MessageType}}, orderId: {{.OrderID}}, status: {{.Status}} });
  if (window.ReactNativeWebView) {
    window.ReactNativeWebView.postMessage(message);
  }
})();
</script>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, r *http.Request, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	// Headers are already sent, so a failed write can only be logged.
	if err := pageTemplate.Execute(w, p); err != nil {
		logging.FromContext(r.Context()).Warn("failed to render payment page",
			zap.String("order_id", p.OrderID),
			zap.String("message_type", p.MessageType),
			zap.Error(err))
	}
}

func finishPage(orderID, status string) page {
	p := page{
		Title:       "Payment Successful",
		Heading:     "Payment Successful",
		Description: "Thank you. Your payment has been received.",
		Color:       "#2e7d32",
		MessageType: "PAYMENT_FINISH",
		OrderID:     orderID,
		Status:      status,
	}
	if status != "paid" {
		p.Heading = "Payment Submitted"
		p.Description = "Your payment is being processed."
		p.Color = "#1565c0"
	}
	return p
}

func errorPage(orderID, status string) page {
	return page{
		Title:       "Payment Failed",
		Heading:     "Payment Failed",
		Description: "The payment could not be completed. Please try again.",
		Color:       "#c62828",
		MessageType: "PAYMENT_ERROR",
		OrderID:     orderID,
		Status:      status,
	}
}

func pendingPage(orderID, status string) page {
	return page{
		Title:       "Payment Pending",
		Heading:     "Payment Pending",
		Description: "Complete the payment using the instructions provided.",
		Color:       "#ef6c00",
		MessageType: "PAYMENT_PENDING",
		OrderID:     orderID,
		Status:      status,
	}
}
