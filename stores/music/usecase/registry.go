package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/base/log"
	"github.com/x-xyz/musicnft/base/ptr"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/event"
	"github.com/x-xyz/musicnft/domain/keys"
	"github.com/x-xyz/musicnft/domain/music"
)

// Registry owns token records. Public mutators lock the token and run in
// their own transaction, the Settler methods join the caller's.
type Registry interface {
	music.UseCase
	music.Settler
}

type RegistryCfg struct {
	Repo      music.Repo
	Tx        domain.TxRunner
	Locker    domain.Locker
	Publisher event.Publisher
	// MetadataWriter publishes the tokenURI document at mint, skipped when nil
	MetadataWriter domain.WebResourceWriterRepository
	MetadataPrefix string
}

type impl struct {
	repo      music.Repo
	tx        domain.TxRunner
	locker    domain.Locker
	publisher event.Publisher
	writer    domain.WebResourceWriterRepository
	prefix    string
}

func New(cfg *RegistryCfg) Registry {
	prefix := cfg.MetadataPrefix
	if prefix == "" {
		prefix = "metadata"
	}
	return &impl{
		repo:      cfg.Repo,
		tx:        cfg.Tx,
		locker:    cfg.Locker,
		publisher: cfg.Publisher,
		writer:    cfg.MetadataWriter,
		prefix:    prefix,
	}
}

func (im *impl) Mint(c ctx.Ctx, p *music.MintParams) (*music.Token, error) {
	params := *p
	params.Creator = params.Creator.ToLower()
	if params.CoverURI == "" {
		params.CoverURI = music.DefaultCoverURI
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// the document is written before anything else so a failed upload leaves no token behind
	tokenURI, err := im.storeMetadata(c, music.NewMetadata(&params))
	if err != nil {
		c.WithField("err", err).Error("storeMetadata failed")
		return nil, err
	}

	var token *music.Token
	err = im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		id, err := im.repo.NextId(c)
		if err != nil {
			c.WithField("err", err).Error("repo.NextId failed")
			return err
		}
		now := time.Now()
		token = &music.Token{
			Id:            id,
			Title:         params.Title,
			Artist:        params.Artist,
			Genre:         params.Genre,
			Creator:       params.Creator,
			Owner:         params.Creator,
			Price:         params.Price,
			IsForSale:     false,
			CoverURI:      params.CoverURI,
			AudioURI:      params.AudioURI,
			TokenURI:      tokenURI,
			CreatedAt:     now,
			UpdatedAt:     now,
			LastSalePrice: domain.NewWei(0),
		}
		if err := im.repo.Create(c, token); err != nil {
			c.WithField("err", err).Error("repo.Create failed")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.publisher.Publish(c, event.NewTokenEvent(event.TypeMinted, token))
	return token, nil
}

func (im *impl) storeMetadata(c ctx.Ctx, m *music.Metadata) (string, error) {
	if im.writer == nil {
		return "", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s/%s.json", im.prefix, uuid.NewString())
	return im.writer.Store(c, path, data, "application/json")
}

func (im *impl) Get(c ctx.Ctx, id music.Id) (*music.Token, error) {
	return im.repo.FindOne(c, id)
}

func (im *impl) List(c ctx.Ctx, opts ...music.FindAllOptionsFunc) ([]*music.Token, error) {
	return im.repo.FindAll(c, opts...)
}

func (im *impl) TotalCount(c ctx.Ctx) (int, error) {
	return im.repo.Count(c)
}

func (im *impl) TokenMetadata(c ctx.Ctx, id music.Id) (*music.Metadata, error) {
	t, err := im.repo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	return music.NewMetadata(&music.MintParams{
		Title:    t.Title,
		Artist:   t.Artist,
		Genre:    t.Genre,
		CoverURI: t.CoverURI,
		AudioURI: t.AudioURI,
	}), nil
}

func (im *impl) SetForSale(c ctx.Ctx, id music.Id, caller domain.Address, desired bool) (*music.Token, error) {
	token, err := im.mutate(c, id, caller, func(t *music.Token) (*music.PatchableToken, error) {
		if desired && !t.Price.IsPositive() {
			return nil, domain.ErrInvalidArgument
		}
		return &music.PatchableToken{IsForSale: &desired}, nil
	})
	if err != nil {
		return nil, err
	}
	im.publisher.Publish(c, event.NewTokenEvent(event.TypeListedForSale, token))
	return token, nil
}

func (im *impl) ToggleForSale(c ctx.Ctx, id music.Id, caller domain.Address) (*music.Token, error) {
	token, err := im.mutate(c, id, caller, func(t *music.Token) (*music.PatchableToken, error) {
		desired := !t.IsForSale
		if desired && !t.Price.IsPositive() {
			return nil, domain.ErrInvalidArgument
		}
		return &music.PatchableToken{IsForSale: &desired}, nil
	})
	if err != nil {
		return nil, err
	}
	im.publisher.Publish(c, event.NewTokenEvent(event.TypeListedForSale, token))
	return token, nil
}

func (im *impl) SetPrice(c ctx.Ctx, id music.Id, caller domain.Address, price domain.Wei) (*music.Token, error) {
	if !price.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	token, err := im.mutate(c, id, caller, func(t *music.Token) (*music.PatchableToken, error) {
		return &music.PatchableToken{Price: &price}, nil
	})
	if err != nil {
		return nil, err
	}
	im.publisher.Publish(c, event.NewTokenEvent(event.TypePriceChanged, token))
	return token, nil
}

// Approve records an operator for the token. Sales don't consult it: the
// engine grants its own operator inside the sale transaction, and any
// transfer clears the approval.
func (im *impl) Approve(c ctx.Ctx, id music.Id, caller domain.Address, operator domain.Address) (*music.Token, error) {
	operator = operator.ToLower()
	return im.mutate(c, id, caller, func(t *music.Token) (*music.PatchableToken, error) {
		if operator.Equals(t.Owner) {
			return nil, domain.ErrInvalidArgument
		}
		return &music.PatchableToken{Approved: &operator}, nil
	})
}

// mutate applies an owner-only change under the token lock
func (im *impl) mutate(c ctx.Ctx, id music.Id, caller domain.Address, change func(*music.Token) (*music.PatchableToken, error)) (*music.Token, error) {
	c = ctx.WithLogFields(c, log.Fields{"tokenId": id, "caller": caller})

	unlock, err := im.locker.Lock(c, keys.TokenLockKey(uint64(id)))
	if err != nil {
		c.WithField("err", err).Warn("locker.Lock failed")
		return nil, err
	}
	defer unlock()

	var res *music.Token
	err = im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		t, err := im.repo.FindOne(c, id)
		if err != nil {
			return err
		}
		if !t.Owner.Equals(caller) {
			return domain.ErrUnauthorized
		}
		patch, err := change(t)
		if err != nil {
			return err
		}
		res, err = im.patch(c, t, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// patch persists a change only if the resulting token is still valid
func (im *impl) patch(c ctx.Ctx, t *music.Token, patch *music.PatchableToken) (*music.Token, error) {
	now := time.Now()
	patch.UpdatedAt = &now

	next := t.Clone()
	patch.Apply(next)
	if err := next.CheckInvariants(); err != nil {
		c.WithFields(log.Fields{"tokenId": t.Id, "err": err}).Error("token invariant broken")
		return nil, err
	}
	if err := im.repo.Patch(c, t.Id, *patch); err != nil {
		c.WithField("err", err).Error("repo.Patch failed")
		return nil, err
	}
	return next, nil
}

func (im *impl) GrantApproval(c ctx.Ctx, id music.Id, owner domain.Address, operator domain.Address) error {
	t, err := im.repo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !t.Owner.Equals(owner) {
		return xerrors.Errorf("approval by non owner %s: %w", owner, domain.ErrInvariantViolation)
	}
	operator = operator.ToLower()
	_, err = im.patch(c, t, &music.PatchableToken{Approved: &operator})
	return err
}

func (im *impl) TransferOwnership(c ctx.Ctx, id music.Id, operator, from, to domain.Address) error {
	t, err := im.repo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !t.Owner.Equals(from) {
		return xerrors.Errorf("token %d owned by %s, not %s: %w", id, t.Owner, from, domain.ErrInvariantViolation)
	}
	if to.IsEmpty() {
		return xerrors.Errorf("transfer to zero address: %w", domain.ErrInvariantViolation)
	}
	if operator.IsEmpty() || (!operator.Equals(from) && !operator.Equals(t.Approved)) {
		return xerrors.Errorf("operator %s not approved: %w", operator, domain.ErrInvariantViolation)
	}

	owner, cleared := to.ToLower(), domain.Address("")
	_, err = im.patch(c, t, &music.PatchableToken{Owner: &owner, Approved: &cleared})
	return err
}

func (im *impl) MarkSold(c ctx.Ctx, id music.Id, price domain.Wei) error {
	t, err := im.repo.FindOne(c, id)
	if err != nil {
		return err
	}
	_, err = im.patch(c, t, &music.PatchableToken{IsForSale: ptr.Bool(false), SoldAt: ptr.Time(time.Now()), LastSalePrice: &price})
	return err
}
