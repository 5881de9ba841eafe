package ethereum

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/x-xyz/musicnft/domain"
)

func GenerateKey() (*ecdsa.PrivateKey, *ecdsa.PublicKey, error) {
	if privateKey, err := crypto.GenerateKey(); err != nil {
		return nil, nil, err
	} else {
		publicKey := privateKey.Public().(*ecdsa.PublicKey)
		return privateKey, publicKey, nil
	}
}

// ParseAddress validates a hex address and returns its lower case form.
// The zero address is rejected, it can never own a token.
func ParseAddress(s string) (domain.Address, error) {
	if !common.IsHexAddress(s) {
		return "", domain.ErrInvalidAddress
	}
	addr := domain.Address(common.HexToAddress(s).Hex()).ToLower()
	if addr.IsEmpty() {
		return "", domain.ErrInvalidAddress
	}
	return addr, nil
}
