// Package service orchestrates the registration and payment-callback
// workflows on top of the store, the payment gateway, and the emailer.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"confreg/src-server/email"
	"confreg/src-server/form"
	"confreg/src-server/model"
	"confreg/src-server/utils"
)

const (
	persistenceErrMsg = "An unexpected error has occurred when registering you." +
		" Please contact us at the email address below."
	paymentGateErrMsg = "We could not create a payment link for you." +
		" Please try registering again in a few minutes."
	membershipUsedErrMsg = "This membership number has already been used for a" +
		" discounted registration. Please check the number or register without it."
)

// RegistrationResult is what the registration form renders after a submit.
type RegistrationResult struct {
	ParticipantType model.ParticipantType
	Discounted      bool
	PaymentLink     string

	WarnInvalidMembership bool

	// field name -> message, set only when validation failed
	FieldErrors form.Errors
	// user-visible workflow errors; empty means the registration went through
	Errors []string
}

func (r *RegistrationResult) OK() bool {
	return len(r.FieldErrors) == 0 && len(r.Errors) == 0
}

// Register runs the whole registration workflow:
//
//  1. validate the form; on failure return field errors, no side effects
//  2. decide the fee: membership claims on a REGULAR registration grant the
//     discounted price unless the number was already used under a
//     near-identical email; a well-formed number we can't verify still gets
//     the discount (honor system)
//  3. insert the participant
//  4. request a payment link with the new ID as the order number; on
//     failure delete the row again (best effort) and ask the user to retry
//  5. send the confirmation email; its failure never fails the registration
func Register(ctx context.Context, as *utils.AppState, values url.Values) *RegistrationResult {
	reg, fieldErrs := form.Parse(values)
	if fieldErrs != nil {
		return &RegistrationResult{FieldErrors: fieldErrs}
	}
	res := &RegistrationResult{ParticipantType: reg.RegistrationType}

	// fee decision
	if reg.RegistrationType == model.PARTICIPANT_TYPE_REGULAR {
		claims := []struct {
			kind   model.MembershipKind
			number string
		}{
			{model.MEMBERSHIP_KIND_ACM, reg.AcmMembershipNumber},
			{model.MEMBERSHIP_KIND_IEEE, reg.IeeeMembershipNumber},
		}
		for _, claim := range claims {
			if claim.number == "" {
				continue
			}
			unused, err := model.IsMembershipUnused(ctx, as.BunDB, claim.kind, claim.number, reg.Email)
			if err != nil {
				slog.Error("can't check membership reuse",
					"kind", claim.kind, "email", reg.Email, "error", err)
				res.Errors = append(res.Errors, persistenceErrMsg)
				return res
			}
			if !unused {
				// the participant redoes the form; nothing was saved
				res.WarnInvalidMembership = true
				res.Errors = append(res.Errors, membershipUsedErrMsg)
				return res
			}
			res.Discounted = true
		}
	}

	participant := reg.Participant()
	participant.FeeDiscounted = res.Discounted

	startTimer := time.Now()
	if err := participant.Insert(ctx, as.BunDB); err != nil {
		slog.Error("can't register participant", "email", reg.Email, "error", err)
		res.Errors = append(res.Errors, persistenceErrMsg)
		return res
	}
	select {
	case as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds()):
	default:
	}
	select {
	case as.MetricChans.RegistrationCreated <- struct{}{}:
	default:
	}

	if !as.Config.GetPaymentEnabled() {
		as.Emailer.SendFromTemplate(ctx, participant.Email, participant.FullName,
			email.TEMPLATE_REGISTRATION_WITHOUT_PAYMENT_LINK, nil)
		return res
	}

	amountMinor := PaymentAmountMinor(as.Config, participant.Email, participant.ParticipantType, res.Discounted)
	paymentLink, err := as.Gateway.RequestPayment(ctx, participant.ID, amountMinor)
	if err != nil {
		slog.Error("can't request a payment link",
			"participant_id", participant.ID,
			"amount_minor", amountMinor,
			"error", err)
		// compensating delete; on failure the unpaid row stays orphaned
		if err := model.DeleteParticipant(ctx, as.BunDB, participant.ID); err != nil {
			slog.Error("can't delete participant after payment failure",
				"participant_id", participant.ID, "error", err)
		}
		res.Errors = append(res.Errors, paymentGateErrMsg)
		return res
	}
	res.PaymentLink = paymentLink

	as.Emailer.SendFromTemplate(ctx, participant.Email, participant.FullName,
		email.TEMPLATE_REGISTRATION, map[string]string{
			"payment_link": paymentLink,
		})

	slog.Info("participant registered",
		"participant_id", participant.ID,
		"type", participant.ParticipantType,
		"discounted", res.Discounted)
	return res
}

// CanApplyACMMembershipDiscount backs the ACM verification endpoint.
func CanApplyACMMembershipDiscount(ctx context.Context, as *utils.AppState, number string, emailAddr string) (bool, error) {
	return model.IsMembershipUnused(ctx, as.BunDB, model.MEMBERSHIP_KIND_ACM, number, emailAddr)
}

// CanApplyIEEEMembership backs the IEEE verification endpoint.
func CanApplyIEEEMembership(ctx context.Context, as *utils.AppState, number string, emailAddr string) (bool, error) {
	return model.IsMembershipUnused(ctx, as.BunDB, model.MEMBERSHIP_KIND_IEEE, number, emailAddr)
}
