package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrInvalidParticipantType = errors.New("invalid participant type")
)

type ParticipantType string

const (
	PARTICIPANT_TYPE_REGULAR      = ParticipantType("REGULAR")
	PARTICIPANT_TYPE_STUDENT      = ParticipantType("STUDENT")
	PARTICIPANT_TYPE_ACCOMPANYING = ParticipantType("ACCOMPANYING")
)

// DetermineParticipantType maps a raw registration-type value onto the
// enum; anything outside the fixed set is rejected.
func DetermineParticipantType(value string) (ParticipantType, error) {
	switch t := ParticipantType(value); t {
	case PARTICIPANT_TYPE_REGULAR, PARTICIPANT_TYPE_STUDENT, PARTICIPANT_TYPE_ACCOMPANYING:
		return t, nil
	default:
		return "", fmt.Errorf("%q: %w", value, ErrInvalidParticipantType)
	}
}

type Participant struct {
	bun.BaseModel `bun:"table:participant"`

	ID             int64     `bun:"id,pk,autoincrement"`
	DateRegistered time.Time `bun:"date_registered,notnull"`
	HasPaid        bool      `bun:"has_paid,notnull,default:false"`

	FullName    string `bun:"full_name,notnull"` // required
	Affiliation string `bun:"affiliation,nullzero"`
	Email       string `bun:"email,notnull"` // required

	InvoicingAddressLine1   string `bun:"invoicing_address_line_1,notnull"` // required
	InvoicingAddressLine2   string `bun:"invoicing_address_line_2,nullzero"`
	InvoicingAddressCity    string `bun:"invoicing_address_city,nullzero"`
	InvoicingAddressCountry string `bun:"invoicing_address_country,notnull"` // required
	InvoicingAddressZipCode string `bun:"invoicing_address_zip_code,nullzero"`
	InvoicingVatNumber      string `bun:"invoicing_vat_number,nullzero"`

	ParticipantType ParticipantType `bun:"participant_type,notnull,type:varchar"` // required
	// membership discount granted at registration time
	FeeDiscounted bool `bun:"fee_discounted,notnull,default:false"`

	AcmMembershipNumber  string `bun:"acm_membership_number,nullzero"`
	IeeeMembershipNumber string `bun:"ieee_membership_number,nullzero"`

	Remarks          string `bun:"remarks,nullzero"`
	PostalMailOptOut bool   `bun:"postal_mail_opt_out,notnull,default:false"`
	EmailOptIn       bool   `bun:"email_opt_in,notnull,default:false"`
}

// Insert appends the participant, assigning the ID and the registration
// timestamp. The ID doubles as the payment gateway order number.
func (p *Participant) Insert(ctx context.Context, db bun.IDB) error {
	if p.ID != 0 {
		return fmt.Errorf("participant already has an id: %d", p.ID)
	}
	if p.DateRegistered.IsZero() {
		p.DateRegistered = time.Now().UTC()
	}
	if _, err := db.
		NewInsert().
		Model(p).
		Exec(ctx); err != nil {
		return fmt.Errorf("can't insert participant: %w", err)
	}
	return nil
}

// AllParticipants returns every participant, newest registration first.
func AllParticipants(ctx context.Context, db bun.IDB) ([]Participant, error) {
	participants := make([]Participant, 0)
	if err := db.
		NewSelect().
		Model(&participants).
		Order("date_registered DESC", "id DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("can't select participants: %w", err)
	}
	return participants, nil
}

// MarkPaid flips has_paid for the participant and returns the row. The
// caller guarantees at-most-once invocation per payment event.
func MarkPaid(ctx context.Context, db bun.IDB, id int64) (*Participant, error) {
	res, err := db.
		NewUpdate().
		Model((*Participant)(nil)).
		Set("has_paid = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't mark participant %d as paid: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("can't get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("mark paid %d: %w", id, ErrParticipantNotFound)
	}

	participant := new(Participant)
	if err := db.
		NewSelect().
		Model(participant).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mark paid %d: %w", id, ErrParticipantNotFound)
		}
		return nil, fmt.Errorf("can't select participant %d: %w", id, err)
	}
	return participant, nil
}

// DeleteParticipant removes the row. Used as the compensating action when
// requesting a payment link fails after the insert.
func DeleteParticipant(ctx context.Context, db bun.IDB, id int64) error {
	if _, err := db.
		NewDelete().
		Model((*Participant)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("can't delete participant %d: %w", id, err)
	}
	return nil
}
