package route

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"confreg/src-server/service"
	"confreg/src-server/utils"
)

// Payment handles the gateway return URL. A 500 here makes the gateway
// re-post the callback, which is the only retry in the whole flow.
func Payment(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /payment-callback", WithRequestID(func(w http.ResponseWriter, r *http.Request) {
		callbackURL := as.Config.GetGatewayCallbackURL()
		if r.URL.RawQuery != "" {
			callbackURL += "?" + r.URL.RawQuery
		}

		result, err := service.HandleCallback(r.Context(), as, callbackURL)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't record the payment, the gateway will retry"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(paymentPage(result)))
	}))
}

func paymentPage(result *service.PaymentResult) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Payment</title>
<link rel="stylesheet" href="/static/style.css"></head>
<body>
<h1>Registration fee payment</h1>
`)
	if result.OK() {
		fmt.Fprintf(&b, `<p class="success">Thank you, your payment was received. A receipt was sent to %s.</p>`+"\n",
			html.EscapeString(result.Participant.Email))
	} else {
		for _, msg := range result.Errors {
			fmt.Fprintf(&b, `<p class="error">%s</p>`+"\n", html.EscapeString(msg))
		}
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
