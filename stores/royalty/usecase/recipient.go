package usecase

import (
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/royalty"
)

type recipientResolver struct {
	delegates map[domain.Address]domain.Address
}

// NewRecipientResolver pays a creator's royalties to its delegate when one is
// configured, to the creator otherwise
func NewRecipientResolver(delegates map[string]string) royalty.RecipientResolver {
	m := make(map[domain.Address]domain.Address, len(delegates))
	for creator, recipient := range delegates {
		m[domain.Address(creator).ToLower()] = domain.Address(recipient).ToLower()
	}
	return &recipientResolver{delegates: m}
}

func (r *recipientResolver) Resolve(creator domain.Address) domain.Address {
	if recipient, ok := r.delegates[creator.ToLower()]; ok && !recipient.IsEmpty() {
		return recipient
	}
	return creator.ToLower()
}
