package route

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"confreg/src-server/service"
	"confreg/src-server/utils"
)

// Registration serves the registration form and handles submissions. The
// form posts to either / or /registration.
func Registration(muxer *http.ServeMux, as *utils.AppState) {
	showForm := WithRequestID(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(registrationPage(nil)))
	})
	muxer.HandleFunc("GET /{$}", showForm)
	muxer.HandleFunc("GET /registration", showForm)

	submit := WithRequestID(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Can't parse the form"))
			return
		}
		result := service.Register(r.Context(), as, r.PostForm)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if len(result.FieldErrors) > 0 {
			w.WriteHeader(http.StatusBadRequest)
		}
		w.Write([]byte(registrationPage(result)))
	})
	muxer.HandleFunc("POST /{$}", submit)
	muxer.HandleFunc("POST /registration", submit)
}

func registrationPage(result *service.RegistrationResult) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Conference registration</title>
<link rel="stylesheet" href="/static/style.css"></head>
<body>
<h1>Conference registration</h1>
`)

	if result != nil {
		switch {
		case result.OK() && result.PaymentLink != "":
			fmt.Fprintf(&b, `<p class="success">You are registered. Pay the registration fee <a href="%s">through the payment gate</a>. We also emailed you this link.</p>`+"\n",
				html.EscapeString(result.PaymentLink))
		case result.OK():
			b.WriteString(`<p class="success">You are registered. Payment instructions will follow by email.</p>` + "\n")
		default:
			for _, msg := range result.Errors {
				fmt.Fprintf(&b, `<p class="error">%s</p>`+"\n", html.EscapeString(msg))
			}
		}
	}

	b.WriteString(`<form method="post" action="/registration">
`)
	fieldErr := func(field string) string {
		if result == nil {
			return ""
		}
		msg, ok := result.FieldErrors[field]
		if !ok {
			return ""
		}
		return fmt.Sprintf(` <span class="field-error">%s</span>`, html.EscapeString(msg))
	}
	textInput := func(field, label string) {
		fmt.Fprintf(&b, `<label>%s <input type="text" name="%s">%s</label><br>`+"\n",
			html.EscapeString(label), field, fieldErr(field))
	}
	textInput("full_name", "Full name (required, printed on the nametag)")
	textInput("affiliation", "Affiliation")
	textInput("email", "Email address (required)")
	fmt.Fprintf(&b, `<label>Registration type <select name="registration_type">
<option value="REGULAR">Regular</option>
<option value="STUDENT">Student</option>
<option value="ACCOMPANYING">Accompanying person</option>
</select>%s</label><br>
`, fieldErr("registration_type"))
	textInput("acm_membership_number", "ACM membership number")
	textInput("ieee_membership_number", "IEEE membership number")
	textInput("invoicing_address_line_1", "Invoicing address line 1 (required)")
	textInput("invoicing_address_line_2", "Invoicing address line 2")
	textInput("invoicing_address_city", "City")
	textInput("invoicing_address_zip_code", "ZIP code")
	textInput("invoicing_address_country", "Country (required)")
	textInput("invoicing_vat_number", "VAT number")
	fmt.Fprintf(&b, `<label>Remarks (dietary restrictions, accessibility requirements, ...) <textarea name="remarks"></textarea>%s</label><br>
<label><input type="checkbox" name="privacy_policy_postal_mail_opt_out"> Do not send me postal mail</label><br>
<label><input type="radio" name="privacy_policy_email_opt_in" value="yes"> Yes, send me announcements via email</label>
<label><input type="radio" name="privacy_policy_email_opt_in" value="no"> No announcements please</label>%s<br>
<label><input type="checkbox" name="anti_harassment_check"> I agree to the anti-harassment policy (required)</label>%s<br>
<button type="submit">Register</button>
</form>
</body>
</html>
`, fieldErr("remarks"), fieldErr("privacy_policy_email_opt_in"), fieldErr("anti_harassment_check"))
	return b.String()
}
