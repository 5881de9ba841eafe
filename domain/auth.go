package domain

import (
	"github.com/golang-jwt/jwt"
	"github.com/x-xyz/musicnft/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

// SignInMessage is what the wallet signs to prove control of an address
type SignInMessage struct {
	Address Address `json:"address"`
	Nonce   string  `json:"nonce"`
	Message string  `json:"message"`
}

type AuthUsecase interface {
	// Nonce issues a one-time sign-in message for address
	Nonce(ctx ctx.Ctx, address Address) (*SignInMessage, error)
	// SignIn verifies the signed message and returns an access token
	SignIn(ctx ctx.Ctx, address Address, signature string) (string, error)
	SignToken(ctx ctx.Ctx, address Address) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
