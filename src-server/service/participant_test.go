package service_test

import (
	"context"
	"errors"
	"testing"

	"confreg/src-server/email"
	"confreg/src-server/gpwebpay"
	"confreg/src-server/model"
	"confreg/src-server/service"
)

func TestChargedPriceStaffCarveOut(t *testing.T) {
	cfg := testConfig(t)

	// staff always pay a nominal 1 major unit
	amount := service.PaymentAmountMinor(cfg, "tung@iuuk.mff.cuni.cz", model.PARTICIPANT_TYPE_REGULAR, false)
	if amount != 100 {
		t.Errorf("staff amount = %d, want 100", amount)
	}

	amount = service.PaymentAmountMinor(cfg, "alice@example.org", model.PARTICIPANT_TYPE_REGULAR, false)
	if amount != 200000 {
		t.Errorf("regular amount = %d, want 200000", amount)
	}
}

func TestComputePrice(t *testing.T) {
	cfg := testConfig(t)
	testCases := []struct {
		participantType model.ParticipantType
		discounted      bool
		want            int64
	}{
		{model.PARTICIPANT_TYPE_REGULAR, false, 2000},
		{model.PARTICIPANT_TYPE_STUDENT, false, 1000},
		{model.PARTICIPANT_TYPE_ACCOMPANYING, false, 500},
		{model.PARTICIPANT_TYPE_REGULAR, true, 1500},
	}
	for _, tc := range testCases {
		if got := service.ComputePrice(cfg, tc.participantType, tc.discounted); got != tc.want {
			t.Errorf("ComputePrice(%s, %v) = %d, want %d", tc.participantType, tc.discounted, got, tc.want)
		}
	}
}

func TestRegisterStudentEndToEnd(t *testing.T) {
	gateway := &fakeGateway{link: "https://gate.example.net/pay?token=abc"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	result := service.Register(ctx, as, registrationValues("alice@example.org", "STUDENT"))
	if !result.OK() {
		t.Fatalf("registration failed: %+v", result)
	}
	if result.PaymentLink != gateway.link {
		t.Errorf("payment link = %q", result.PaymentLink)
	}

	participants, err := model.AllParticipants(ctx, as.BunDB)
	if err != nil {
		t.Fatal(err)
	}
	if len(participants) != 1 {
		t.Fatalf("got %d participants, want 1", len(participants))
	}
	if participants[0].ParticipantType != model.PARTICIPANT_TYPE_STUDENT {
		t.Errorf("participant type = %q", participants[0].ParticipantType)
	}

	if len(gateway.requests) != 1 {
		t.Fatalf("got %d payment requests, want 1", len(gateway.requests))
	}
	if gateway.requests[0].orderNumber != participants[0].ID {
		t.Errorf("order number %d != participant id %d", gateway.requests[0].orderNumber, participants[0].ID)
	}
	if gateway.requests[0].amountMinor != 100000 {
		t.Errorf("amount = %d, want student price 1000 * 100", gateway.requests[0].amountMinor)
	}

	if len(emailer.sent) != 1 {
		t.Fatalf("got %d emails, want 1", len(emailer.sent))
	}
	sent := emailer.sent[0]
	if sent.template != email.TEMPLATE_REGISTRATION {
		t.Errorf("template = %q", sent.template)
	}
	if sent.to != "alice@example.org" {
		t.Errorf("to = %q", sent.to)
	}
	if sent.subst["payment_link"] != gateway.link {
		t.Errorf("payment_link subst = %q", sent.subst["payment_link"])
	}
}

func TestRegisterValidationFailureHasNoSideEffects(t *testing.T) {
	gateway := &fakeGateway{link: "x"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	values := registrationValues("alice@example.org", "VIP")
	result := service.Register(ctx, as, values)
	if result.OK() {
		t.Fatal("registration with a bad type should fail")
	}
	if _, ok := result.FieldErrors["registration_type"]; !ok {
		t.Errorf("want a registration_type field error, got %v", result.FieldErrors)
	}

	participants, err := model.AllParticipants(ctx, as.BunDB)
	if err != nil {
		t.Fatal(err)
	}
	if len(participants) != 0 {
		t.Error("rejected registration must not write to the store")
	}
	if len(gateway.requests) != 0 {
		t.Error("rejected registration must not hit the gateway")
	}
	if len(emailer.sent) != 0 {
		t.Error("rejected registration must not send email")
	}
}

func TestRegisterCompensatesOnGatewayFailure(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("gateway down")}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	result := service.Register(ctx, as, registrationValues("bob@example.org", "REGULAR"))
	if result.OK() {
		t.Fatal("registration should fail when the gateway is down")
	}
	if len(result.Errors) == 0 {
		t.Error("want a user-facing retry message")
	}

	// the inserted row must have been deleted again
	participants, err := model.AllParticipants(ctx, as.BunDB)
	if err != nil {
		t.Fatal(err)
	}
	if len(participants) != 0 {
		t.Errorf("compensating delete left %d rows behind", len(participants))
	}
	if len(emailer.sent) != 0 {
		t.Error("failed registration must not send a confirmation email")
	}
}

func TestRegisterMembershipDiscount(t *testing.T) {
	gateway := &fakeGateway{link: "https://gate.example.net/pay"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	values := registrationValues("member@example.org", "REGULAR")
	values.Set("acm_membership_number", "1234567")
	result := service.Register(ctx, as, values)
	if !result.OK() {
		t.Fatalf("registration failed: %+v", result)
	}
	if !result.Discounted {
		t.Error("first use of a membership number should grant the discount")
	}
	if gateway.requests[0].amountMinor != 150000 {
		t.Errorf("amount = %d, want discounted price 1500 * 100", gateway.requests[0].amountMinor)
	}

	// the same number under a near-identical email gets nothing saved
	values = registrationValues("member1@example.org", "REGULAR")
	values.Set("acm_membership_number", "1234567")
	result = service.Register(ctx, as, values)
	if result.OK() {
		t.Fatal("membership reuse should be rejected")
	}
	if !result.WarnInvalidMembership {
		t.Error("reuse should set the membership warning")
	}
	participants, err := model.AllParticipants(ctx, as.BunDB)
	if err != nil {
		t.Fatal(err)
	}
	if len(participants) != 1 {
		t.Errorf("reuse must not be persisted, got %d rows", len(participants))
	}

	// a sufficiently different email counts as an independent member
	values = registrationValues("someone.else@elsewhere.net", "REGULAR")
	values.Set("acm_membership_number", "1234567")
	result = service.Register(ctx, as, values)
	if !result.OK() {
		t.Fatalf("independent member rejected: %+v", result)
	}
	if !result.Discounted {
		t.Error("independent member should get the discount")
	}
}

func TestRegisterPaymentDisabled(t *testing.T) {
	t.Setenv("PAYMENT_ENABLED", "false")
	gateway := &fakeGateway{link: "x"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	result := service.Register(ctx, as, registrationValues("alice@example.org", "STUDENT"))
	if !result.OK() {
		t.Fatalf("registration failed: %+v", result)
	}
	if result.PaymentLink != "" {
		t.Errorf("payment link = %q, want none", result.PaymentLink)
	}
	if len(gateway.requests) != 0 {
		t.Error("disabled payments must not hit the gateway")
	}
	if len(emailer.sent) != 1 || emailer.sent[0].template != email.TEMPLATE_REGISTRATION_WITHOUT_PAYMENT_LINK {
		t.Errorf("want one REGISTRATION_WITHOUT_PAYMENT_LINK email, got %+v", emailer.sent)
	}
}

func TestRegisterHonorSystemKeepsGarbageNumbers(t *testing.T) {
	gateway := &fakeGateway{link: "https://gate.example.net/pay"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	// nobody can verify this is a real IEEE number; the discount is granted
	values := registrationValues("honest@example.org", "REGULAR")
	values.Set("ieee_membership_number", "definitely-real")
	result := service.Register(ctx, as, values)
	if !result.OK() {
		t.Fatalf("registration failed: %+v", result)
	}
	if !result.Discounted {
		t.Error("unverifiable membership numbers still get the discount")
	}
}

func TestCanApplyMembership(t *testing.T) {
	gateway := &fakeGateway{link: "x"}
	emailer := &fakeEmailer{}
	as := testAppState(t, gateway, emailer)
	ctx := context.Background()

	prior := &model.Participant{
		FullName:                "Prior Member",
		Email:                   "member@example.org",
		InvoicingAddressLine1:   "somewhere",
		InvoicingAddressCountry: "CZ",
		ParticipantType:         model.PARTICIPANT_TYPE_REGULAR,
		IeeeMembershipNumber:    "777",
	}
	if err := prior.Insert(ctx, as.BunDB); err != nil {
		t.Fatal(err)
	}

	ok, err := service.CanApplyIEEEMembership(ctx, as, "777", "member2@example.org")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("near-identical email should block the IEEE discount")
	}

	ok, err = service.CanApplyACMMembershipDiscount(ctx, as, "777", "member2@example.org")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("an IEEE claim must not block an ACM number")
	}
}

var _ gpwebpay.Gateway = (*fakeGateway)(nil)
var _ email.Sender = (*fakeEmailer)(nil)
