package service_test

import (
	"context"
	"strings"
	"testing"

	"confreg/src-server/email"
	"confreg/src-server/gpwebpay"
	"confreg/src-server/model"
	"confreg/src-server/service"
)

func TestHandleCallbackSuccess(t *testing.T) {
	gateway := &fakeGateway{link: "x"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	participant := &model.Participant{
		FullName:                "Alice Liddell",
		Email:                   "alice@example.org",
		InvoicingAddressLine1:   "25 Rabbit Hole Lane",
		InvoicingAddressCity:    "Oxford",
		InvoicingAddressCountry: "United Kingdom",
		ParticipantType:         model.PARTICIPANT_TYPE_STUDENT,
	}
	if err := participant.Insert(ctx, as.BunDB); err != nil {
		t.Fatal(err)
	}

	gateway.callback = &gpwebpay.Callback{
		Outcome:     gpwebpay.OutcomeSuccessful,
		OrderNumber: participant.ID,
		PRCode:      "0",
	}
	result, err := service.HandleCallback(ctx, as, "https://conf.example.org/payment-callback?ORDERNUMBER=42&PRCODE=0")
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK() {
		t.Fatalf("callback failed: %+v", result)
	}
	if !result.Participant.HasPaid {
		t.Error("participant should be marked as paid")
	}
	if result.Price != 1000 {
		t.Errorf("price = %d, want the student price 1000", result.Price)
	}

	if len(emailer.sent) != 1 {
		t.Fatalf("got %d emails, want 1 receipt", len(emailer.sent))
	}
	receipt := emailer.sent[0]
	if receipt.template != email.TEMPLATE_RECEIPT {
		t.Errorf("template = %q", receipt.template)
	}
	if receipt.subst["invoicing_address_line_1"] != "25 Rabbit Hole Lane" {
		t.Errorf("invoicing line not substituted: %v", receipt.subst)
	}
	if !strings.Contains(receipt.subst["price"], "1000") {
		t.Errorf("price subst = %q", receipt.subst["price"])
	}
}

func TestHandleCallbackDeclinedLeavesStoreUntouched(t *testing.T) {
	gateway := &fakeGateway{link: "x"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	participant := &model.Participant{
		FullName:                "Bob",
		Email:                   "bob@example.org",
		InvoicingAddressLine1:   "somewhere",
		InvoicingAddressCountry: "CZ",
		ParticipantType:         model.PARTICIPANT_TYPE_REGULAR,
	}
	if err := participant.Insert(ctx, as.BunDB); err != nil {
		t.Fatal(err)
	}

	gateway.callback = &gpwebpay.Callback{
		Outcome:     gpwebpay.OutcomeDeclined,
		OrderNumber: participant.ID,
		PRCode:      "30",
	}
	result, err := service.HandleCallback(ctx, as, "https://conf.example.org/payment-callback?ORDERNUMBER=1&PRCODE=30")
	if err != nil {
		t.Fatal(err)
	}
	if result.OK() {
		t.Fatal("declined payment should carry a user-visible error")
	}

	participants, err := model.AllParticipants(ctx, as.BunDB)
	if err != nil {
		t.Fatal(err)
	}
	if participants[0].HasPaid {
		t.Error("declined payment must not mark anyone as paid")
	}
	if len(emailer.sent) != 0 {
		t.Error("declined payment must not send a receipt")
	}
}

func TestHandleCallbackCompromisedAndMalformed(t *testing.T) {
	for _, outcome := range []gpwebpay.Outcome{gpwebpay.OutcomeCompromised, gpwebpay.OutcomeMalformed} {
		gateway := &fakeGateway{callback: &gpwebpay.Callback{Outcome: outcome}}
		emailer := &fakeEmailer{}
		as := testAppState(t, gateway, emailer)

		result, err := service.HandleCallback(context.Background(), as, "https://conf.example.org/payment-callback?x=1")
		if err != nil {
			t.Fatal(err)
		}
		if result.OK() {
			t.Errorf("outcome %s should carry a user-visible error", outcome)
		}
		if len(emailer.sent) != 0 {
			t.Errorf("outcome %s must not send email", outcome)
		}
	}
}

func TestHandleCallbackUnknownOrderSurfacesError(t *testing.T) {
	gateway := &fakeGateway{callback: &gpwebpay.Callback{
		Outcome:     gpwebpay.OutcomeSuccessful,
		OrderNumber: 424242,
		PRCode:      "0",
	}}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)

	// a verified payment we can't record must surface, so the gateway
	// re-posts the callback
	if _, err := service.HandleCallback(context.Background(), as, "https://conf.example.org/payment-callback?ORDERNUMBER=424242&PRCODE=0"); err == nil {
		t.Fatal("mark-paid failure after a verified payment should surface")
	}
	if len(emailer.sent) != 0 {
		t.Error("no receipt when the payment could not be recorded")
	}
}
