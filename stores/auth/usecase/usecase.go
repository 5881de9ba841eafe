package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/ethereum"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/keys"
	"github.com/x-xyz/musicnft/service/redis"
)

const (
	defaultNonceTtl = 5 * time.Minute
	defaultTokenTtl = 24 * time.Hour
)

type AuthUseCaseCfg struct {
	JwtSecret string
	Redis     redis.Service
	// MessageTemplate has one %s replaced by the nonce
	MessageTemplate string
	NonceTtl        time.Duration
	TokenTtl        time.Duration
}

type impl struct {
	jwtSecret []byte
	redis     redis.Service
	template  string
	nonceTtl  time.Duration
	tokenTtl  time.Duration
}

func New(cfg *AuthUseCaseCfg) domain.AuthUsecase {
	im := &impl{
		jwtSecret: []byte(cfg.JwtSecret),
		redis:     cfg.Redis,
		template:  cfg.MessageTemplate,
		nonceTtl:  cfg.NonceTtl,
		tokenTtl:  cfg.TokenTtl,
	}
	if im.nonceTtl == 0 {
		im.nonceTtl = defaultNonceTtl
	}
	if im.tokenTtl == 0 {
		im.tokenTtl = defaultTokenTtl
	}
	return im
}

func (im *impl) Nonce(c ctx.Ctx, address domain.Address) (*domain.SignInMessage, error) {
	address, err := ethereum.ParseAddress(string(address))
	if err != nil {
		return nil, err
	}

	nonce := uuid.NewString()
	if err := im.redis.Set(c, keys.RedisKey(keys.PfxNonce, string(address)), []byte(nonce), im.nonceTtl); err != nil {
		c.WithField("err", err).Error("redis.Set failed")
		return nil, err
	}

	return &domain.SignInMessage{
		Address: address,
		Nonce:   nonce,
		Message: fmt.Sprintf(im.template, nonce),
	}, nil
}

// SignIn consumes the pending nonce, so a signature can be used only once
func (im *impl) SignIn(c ctx.Ctx, address domain.Address, signature string) (string, error) {
	address, err := ethereum.ParseAddress(string(address))
	if err != nil {
		return "", err
	}

	nonce, err := im.redis.GetDel(c, keys.RedisKey(keys.PfxNonce, string(address)))
	if errors.Is(err, redis.ErrNotFound) {
		return "", xerrors.Errorf("no pending nonce: %w", domain.ErrUnauthorized)
	} else if err != nil {
		c.WithField("err", err).Error("redis.GetDel failed")
		return "", err
	}

	ok, err := ethereum.ValidateMsgSignature([]byte(fmt.Sprintf(im.template, string(nonce))), signature, string(address))
	if err != nil {
		c.WithField("err", err).Warn("ethereum.ValidateMsgSignature failed")
		return "", domain.ErrInvalidSignature
	}
	if !ok {
		return "", domain.ErrInvalidSignature
	}

	return im.SignToken(c, address)
}

func (im *impl) SignToken(c ctx.Ctx, address domain.Address) (string, error) {
	claims := domain.JwtCustomClaims{
		Address: string(address.ToLower()),
		StandardClaims: jwt.StandardClaims{
			Subject:   string(address.ToLower()),
			ExpiresAt: time.Now().Add(im.tokenTtl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})

	if token != nil {
		if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
			return claims.Address, nil
		}
	}

	if err == nil {
		err = domain.ErrUnauthorized
	}
	return "", xerrors.Errorf("%v: %w", err, domain.ErrUnauthorized)
}
