package form_test

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"confreg/src-server/form"
	"confreg/src-server/model"
)

func validValues() url.Values {
	return url.Values{
		"full_name":                   {"  Alice Liddell  "},
		"email":                       {"alice@example.org"},
		"registration_type":           {"STUDENT"},
		"invoicing_address_line_1":    {"25 Rabbit Hole Lane"},
		"invoicing_address_country":   {"Wonderland"},
		"anti_harassment_check":       {"on"},
		"privacy_policy_email_opt_in": {"no"},
	}
}

func TestParseValid(t *testing.T) {
	reg, errs := form.Parse(validValues())
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if reg.FullName != "Alice Liddell" {
		t.Errorf("full name not trimmed: %q", reg.FullName)
	}
	if reg.RegistrationType != model.PARTICIPANT_TYPE_STUDENT {
		t.Errorf("registration type = %q", reg.RegistrationType)
	}
	if reg.EmailOptIn {
		t.Error("email opt-in should be false for \"no\"")
	}
}

func TestParseIdempotent(t *testing.T) {
	values := validValues()
	values.Set("affiliation", "  Oxford  ")
	first, errs := form.Parse(values)
	if errs != nil {
		t.Fatal(errs)
	}
	second, errs := form.Parse(values)
	if errs != nil {
		t.Fatal(errs)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parsing the same input twice differs:\n%+v\n%+v", first, second)
	}
}

func TestParseOptionalEmptyAfterTrim(t *testing.T) {
	values := validValues()
	values.Set("affiliation", "   ")
	values.Set("remarks", "\t\n")
	reg, errs := form.Parse(values)
	if errs != nil {
		t.Fatal(errs)
	}
	if reg.Affiliation != "" {
		t.Errorf("whitespace-only affiliation should normalize to absent, got %q", reg.Affiliation)
	}
	if reg.Remarks != "" {
		t.Errorf("whitespace-only remarks should normalize to absent, got %q", reg.Remarks)
	}
}

func TestParseMissingRequired(t *testing.T) {
	values := validValues()
	values.Set("full_name", "   ")
	values.Del("invoicing_address_country")
	values.Del("anti_harassment_check")
	_, errs := form.Parse(values)
	if errs == nil {
		t.Fatal("expected errors")
	}
	for _, field := range []string{"full_name", "invoicing_address_country", "anti_harassment_check"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for field %q, got %v", field, errs)
		}
	}
}

func TestParseInvalidRegistrationType(t *testing.T) {
	values := validValues()
	values.Set("registration_type", "VIP")
	_, errs := form.Parse(values)
	if _, ok := errs["registration_type"]; !ok {
		t.Errorf("want a registration_type error, got %v", errs)
	}
}

func TestParseTooLong(t *testing.T) {
	values := validValues()
	values.Set("full_name", strings.Repeat("a", 513))
	values.Set("acm_membership_number", strings.Repeat("9", 65))
	_, errs := form.Parse(values)
	if _, ok := errs["full_name"]; !ok {
		t.Errorf("want a full_name length error, got %v", errs)
	}
	if _, ok := errs["acm_membership_number"]; !ok {
		t.Errorf("want an acm_membership_number length error, got %v", errs)
	}
}

func TestParseBadEmail(t *testing.T) {
	values := validValues()
	values.Set("email", "not-an-address")
	_, errs := form.Parse(values)
	if _, ok := errs["email"]; !ok {
		t.Errorf("want an email error, got %v", errs)
	}
}

func TestParticipantFromRegistration(t *testing.T) {
	values := validValues()
	values.Set("acm_membership_number", "1234567")
	values.Set("privacy_policy_postal_mail_opt_out", "on")
	reg, errs := form.Parse(values)
	if errs != nil {
		t.Fatal(errs)
	}
	participant := reg.Participant()
	if participant.ParticipantType != model.PARTICIPANT_TYPE_STUDENT {
		t.Errorf("participant type = %q", participant.ParticipantType)
	}
	if participant.AcmMembershipNumber != "1234567" {
		t.Errorf("acm membership number = %q", participant.AcmMembershipNumber)
	}
	if !participant.PostalMailOptOut {
		t.Error("postal opt-out lost")
	}
	if participant.ID != 0 || participant.HasPaid {
		t.Error("a form-built participant must be unpersisted and unpaid")
	}
}
