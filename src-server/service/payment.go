package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"confreg/src-server/email"
	"confreg/src-server/gpwebpay"
	"confreg/src-server/model"
	"confreg/src-server/utils"
)

const (
	paymentCompromisedMsg = "The payment could not be verified. If you were charged," +
		" please contact us at the email address below."
	paymentDeclinedMsg = "The payment did not end successfully." +
		" You can retry the payment through the link in your confirmation email."
	paymentMalformedMsg = "The payment callback is missing an order number."
)

// PaymentResult is what the payment-callback page renders.
type PaymentResult struct {
	OrderNumber int64
	Participant *model.Participant
	// charged price in major units, for display
	Price int64

	// user-visible message when the payment did not go through
	Errors []string
}

func (r *PaymentResult) OK() bool {
	return len(r.Errors) == 0
}

// HandleCallback verifies the gateway return URL and marks the matching
// participant as paid. A non-successful outcome leaves the store untouched
// and only produces a user-visible message. A mark-paid failure after a
// verified payment is returned as an error so the handler responds 500 and
// the gateway re-posts the callback.
func HandleCallback(ctx context.Context, as *utils.AppState, callbackURL string) (*PaymentResult, error) {
	res := &PaymentResult{}

	cb, err := as.Gateway.VerifyCallback(callbackURL)
	if err != nil {
		slog.Error("can't parse payment callback", "url", callbackURL, "error", err)
		res.Errors = append(res.Errors, paymentMalformedMsg)
		return res, nil
	}
	res.OrderNumber = cb.OrderNumber

	switch cb.Outcome {
	case gpwebpay.OutcomeSuccessful:
	case gpwebpay.OutcomeMalformed:
		slog.Error("found no order number in payment callback", "url", callbackURL)
		res.Errors = append(res.Errors, paymentMalformedMsg)
		return res, nil
	case gpwebpay.OutcomeCompromised:
		slog.Error("payment communication compromised", "url", callbackURL)
		res.Errors = append(res.Errors, paymentCompromisedMsg)
		return res, nil
	case gpwebpay.OutcomeDeclined:
		slog.Error("payment unsuccessful",
			"order_number", cb.OrderNumber,
			"prcode", cb.PRCode,
			"srcode", cb.SRCode,
			"result_text", cb.ResultText)
		res.Errors = append(res.Errors, paymentDeclinedMsg)
		return res, nil
	default:
		res.Errors = append(res.Errors, paymentCompromisedMsg)
		return res, nil
	}

	participant, err := model.MarkPaid(ctx, as.BunDB, cb.OrderNumber)
	if err != nil {
		slog.Error("can't mark a verified payment as paid",
			"order_number", cb.OrderNumber,
			"url", callbackURL,
			"error", err)
		return nil, fmt.Errorf("mark paid after verified payment: %w", err)
	}
	res.Participant = participant
	res.Price = ChargedPrice(as.Config, participant.Email, participant.ParticipantType, participant.FeeDiscounted)

	select {
	case as.MetricChans.PaymentConfirmed <- struct{}{}:
	default:
	}

	as.Emailer.SendFromTemplate(ctx, participant.Email, participant.FullName,
		email.TEMPLATE_RECEIPT, map[string]string{
			"price":                      formatPrice(res.Price, as.Config.GetGatewayCurrency()),
			"order_number":               strconv.FormatInt(participant.ID, 10),
			"invoicing_address_line_1":   participant.InvoicingAddressLine1,
			"invoicing_address_line_2":   participant.InvoicingAddressLine2,
			"invoicing_address_city":     participant.InvoicingAddressCity,
			"invoicing_address_zip_code": participant.InvoicingAddressZipCode,
			"invoicing_address_country":  participant.InvoicingAddressCountry,
			"invoicing_vat_number":       participant.InvoicingVatNumber,
		})

	slog.Info("payment confirmed", "order_number", cb.OrderNumber)
	return res, nil
}

// ISO 4217 numeric codes the conference realistically charges in
var currencyNames = map[string]string{
	"203": "CZK",
	"978": "EUR",
	"840": "USD",
}

func formatPrice(price int64, currencyCode string) string {
	name, ok := currencyNames[currencyCode]
	if !ok {
		name = currencyCode
	}
	return strconv.FormatInt(price, 10) + " " + name
}
