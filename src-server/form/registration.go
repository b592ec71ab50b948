// Package form turns raw registration form fields into a normalized,
// typed record or a set of field-level error messages.
package form

import (
	"fmt"
	"net/url"
	"strings"

	"confreg/src-server/model"
)

const (
	maxFullNameLen   = 512
	maxEmailLen      = 256
	maxAddressLen    = 512
	maxCityLen       = 256
	maxCountryLen    = 256
	maxCodeLen       = 64
	maxMembershipLen = 64
	maxRemarksLen    = 16384
)

// Errors maps a form field name to the message shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", "))
}

// Registration is the normalized form input. Optional string fields hold
// "" when absent; the store persists those as NULL.
type Registration struct {
	FullName    string
	Affiliation string
	Email       string

	InvoicingAddressLine1   string
	InvoicingAddressLine2   string
	InvoicingAddressCity    string
	InvoicingAddressCountry string
	InvoicingAddressZipCode string
	InvoicingVatNumber      string

	RegistrationType model.ParticipantType

	AcmMembershipNumber  string
	IeeeMembershipNumber string

	Remarks string

	AntiHarassmentAck bool
	PostalMailOptOut  bool
	EmailOptIn        bool
}

// Parse validates and normalizes raw form values. Pure; calling it twice
// on the same values yields the same result.
func Parse(values url.Values) (*Registration, Errors) {
	errs := make(Errors)

	required := func(field string, maxLen int) string {
		value := strings.TrimSpace(values.Get(field))
		switch {
		case value == "":
			errs[field] = "This field is required."
		case len(value) > maxLen:
			errs[field] = fmt.Sprintf("Must be at most %d characters long.", maxLen)
		}
		return value
	}
	// empty after trimming normalizes to absent, not ""
	optional := func(field string, maxLen int) string {
		value := strings.TrimSpace(values.Get(field))
		if len(value) > maxLen {
			errs[field] = fmt.Sprintf("Must be at most %d characters long.", maxLen)
		}
		return value
	}
	checkbox := func(field string) bool {
		switch strings.ToLower(strings.TrimSpace(values.Get(field))) {
		case "on", "true", "1", "yes":
			return true
		default:
			return false
		}
	}

	reg := &Registration{
		FullName:    required("full_name", maxFullNameLen),
		Affiliation: optional("affiliation", maxFullNameLen),
		Email:       required("email", maxEmailLen),

		InvoicingAddressLine1:   required("invoicing_address_line_1", maxAddressLen),
		InvoicingAddressLine2:   optional("invoicing_address_line_2", maxAddressLen),
		InvoicingAddressCity:    optional("invoicing_address_city", maxCityLen),
		InvoicingAddressCountry: required("invoicing_address_country", maxCountryLen),
		InvoicingAddressZipCode: optional("invoicing_address_zip_code", maxCodeLen),
		InvoicingVatNumber:      optional("invoicing_vat_number", maxCodeLen),

		AcmMembershipNumber:  optional("acm_membership_number", maxMembershipLen),
		IeeeMembershipNumber: optional("ieee_membership_number", maxMembershipLen),

		Remarks: optional("remarks", maxRemarksLen),

		AntiHarassmentAck: checkbox("anti_harassment_check"),
		PostalMailOptOut:  checkbox("privacy_policy_postal_mail_opt_out"),
	}

	if reg.Email != "" && !strings.Contains(reg.Email, "@") {
		errs["email"] = "Not a valid email address."
	}

	registrationType, err := model.DetermineParticipantType(strings.TrimSpace(values.Get("registration_type")))
	if err != nil {
		errs["registration_type"] = "Not a valid choice."
	} else {
		reg.RegistrationType = registrationType
	}

	if !reg.AntiHarassmentAck {
		errs["anti_harassment_check"] = "This field is required."
	}

	switch strings.TrimSpace(values.Get("privacy_policy_email_opt_in")) {
	case "yes":
		reg.EmailOptIn = true
	case "no":
		reg.EmailOptIn = false
	default:
		errs["privacy_policy_email_opt_in"] = "This field is required."
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return reg, nil
}

// Participant builds the row to persist from the normalized input.
func (r *Registration) Participant() *model.Participant {
	return &model.Participant{
		FullName:    r.FullName,
		Affiliation: r.Affiliation,
		Email:       r.Email,

		InvoicingAddressLine1:   r.InvoicingAddressLine1,
		InvoicingAddressLine2:   r.InvoicingAddressLine2,
		InvoicingAddressCity:    r.InvoicingAddressCity,
		InvoicingAddressCountry: r.InvoicingAddressCountry,
		InvoicingAddressZipCode: r.InvoicingAddressZipCode,
		InvoicingVatNumber:      r.InvoicingVatNumber,

		ParticipantType: r.RegistrationType,

		AcmMembershipNumber:  r.AcmMembershipNumber,
		IeeeMembershipNumber: r.IeeeMembershipNumber,

		Remarks:          r.Remarks,
		PostalMailOptOut: r.PostalMailOptOut,
		EmailOptIn:       r.EmailOptIn,
	}
}
