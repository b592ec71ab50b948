package model

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/uptrace/bun"
)

type MembershipKind string

const (
	MEMBERSHIP_KIND_ACM  = MembershipKind("ACM")
	MEMBERSHIP_KIND_IEEE = MembershipKind("IEEE")
)

// A claimed membership number blocks reuse only for near-identical emails;
// two participants with sufficiently different emails are accepted as two
// independent members.
const membershipEmailMaxDistance = 4

// IsMembershipUnused reports whether no prior participant claimed the same
// membership number under an email within edit distance <4 of the given
// one. The number itself is never checked against a membership directory;
// we run on an honor system and only guard against reuse.
func IsMembershipUnused(ctx context.Context, db bun.IDB, kind MembershipKind, number string, email string) (bool, error) {
	var column string
	switch kind {
	case MEMBERSHIP_KIND_ACM:
		column = "acm_membership_number"
	case MEMBERSHIP_KIND_IEEE:
		column = "ieee_membership_number"
	default:
		return false, fmt.Errorf("unknown membership kind: %s", kind)
	}

	var emails []string
	if err := db.
		NewSelect().
		Model((*Participant)(nil)).
		Column("email").
		Where("? = ?", bun.Ident(column), number).
		Scan(ctx, &emails); err != nil {
		return false, fmt.Errorf("can't select %s members: %w", kind, err)
	}

	for _, prior := range emails {
		if levenshtein.ComputeDistance(prior, email) < membershipEmailMaxDistance {
			return false, nil
		}
	}
	return true, nil
}
