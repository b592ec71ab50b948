package service

import (
	"confreg/src-server/model"
	"confreg/src-server/utils"
)

// ComputePrice returns the registration fee in major currency units from
// the configured price table.
func ComputePrice(cfg *utils.Config, participantType model.ParticipantType, discounted bool) int64 {
	if discounted {
		return cfg.GetPriceDiscounted()
	}
	switch participantType {
	case model.PARTICIPANT_TYPE_STUDENT:
		return cfg.GetPriceStudent()
	case model.PARTICIPANT_TYPE_ACCOMPANYING:
		return cfg.GetPriceAccompanying()
	default:
		return cfg.GetPriceRegular()
	}
}

// ChargedPrice is ComputePrice plus the staff carve-out: allow-listed
// emails always pay a nominal 1 major unit.
func ChargedPrice(cfg *utils.Config, email string, participantType model.ParticipantType, discounted bool) int64 {
	if cfg.IsStaffEmail(email) {
		return 1
	}
	return ComputePrice(cfg, participantType, discounted)
}

// PaymentAmountMinor is what goes to the payment gateway: the charged
// price in the smallest unit of the currency (halers, cents, ...).
func PaymentAmountMinor(cfg *utils.Config, email string, participantType model.ParticipantType, discounted bool) int64 {
	return ChargedPrice(cfg, email, participantType, discounted) * cfg.GetMinorUnitMultiplier()
}
