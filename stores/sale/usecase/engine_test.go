package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/musicnft/base/ctx"
	pricefomatter "github.com/x-xyz/musicnft/base/price_fomatter"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/event"
	"github.com/x-xyz/musicnft/domain/keys"
	"github.com/x-xyz/musicnft/domain/ledger"
	ledgerMocks "github.com/x-xyz/musicnft/domain/ledger/mocks"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/domain/royalty"
	"github.com/x-xyz/musicnft/domain/sale"
	"github.com/x-xyz/musicnft/service/lock"
	"github.com/x-xyz/musicnft/service/memstore"
	ledgerRepository "github.com/x-xyz/musicnft/stores/ledger/repository"
	ledgerUsecase "github.com/x-xyz/musicnft/stores/ledger/usecase"
	musicRepository "github.com/x-xyz/musicnft/stores/music/repository"
	musicUsecase "github.com/x-xyz/musicnft/stores/music/usecase"
	royaltyUsecase "github.com/x-xyz/musicnft/stores/royalty/usecase"
	saleRepository "github.com/x-xyz/musicnft/stores/sale/repository"
)

const (
	creatorA = domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	buyerB   = domain.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	buyerC   = domain.Address("0xcccccccccccccccccccccccccccccccccccccccc")
	delegate = domain.Address("0xdddddddddddddddddddddddddddddddddddddddd")
	market   = domain.Address("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
)

var formatter = pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{})

func ether(s string) domain.Wei {
	w, err := formatter.ParseDisplay(s)
	if err != nil {
		panic(err)
	}
	return w
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *fakePublisher) Publish(c ctx.Ctx, e *event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) ofType(typ event.Type) []*event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := []*event.Event{}
	for _, e := range p.events {
		if e.Type == typ {
			res = append(res, e)
		}
	}
	return res
}

type failingReceipts struct {
	sale.Repo
}

func (f *failingReceipts) Insert(c ctx.Ctx, r *sale.Receipt) error {
	return errors.New("disk full")
}

type brokenPolicy struct{}

func (p *brokenPolicy) Name() royalty.PolicyName {
	return "broken"
}

func (p *brokenPolicy) ComputeSplit(c ctx.Ctx, t *music.Token, price domain.Wei) (*royalty.Split, error) {
	return &royalty.Split{Recipient: t.Creator, RoyaltyAmount: price, SellerAmount: domain.NewWei(1)}, nil
}

type engineSuite struct {
	suite.Suite

	ctx       ctx.Ctx
	store     *memstore.Store
	locker    domain.Locker
	publisher *fakePublisher
	registry  musicUsecase.Registry
	ledger    ledger.UseCase
	receipts  sale.Repo
	policy    royalty.Policy
	im        sale.UseCase
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(engineSuite))
}

func (s *engineSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.store = memstore.New()
	s.locker = lock.NewLocal(time.Second)
	s.publisher = &fakePublisher{}
	s.registry = musicUsecase.New(&musicUsecase.RegistryCfg{
		Repo:      musicRepository.NewMemory(s.store),
		Tx:        s.store,
		Locker:    s.locker,
		Publisher: s.publisher,
	})
	s.ledger = ledgerUsecase.New(&ledgerUsecase.LedgerUseCaseCfg{
		Repo: ledgerRepository.NewMemory(s.store),
		Tx:   s.store,
	})
	s.receipts = saleRepository.NewMemory(s.store)

	policy, err := royaltyUsecase.NewFlat(royaltyUsecase.DefaultBps, royaltyUsecase.NewRecipientResolver(nil))
	s.Require().NoError(err)
	s.policy = policy
	s.im = s.newEngine(s.ledger, s.receipts, s.policy, s.locker)
}

func (s *engineSuite) newEngine(l ledger.UseCase, receipts sale.Repo, policy royalty.Policy, locker domain.Locker) sale.UseCase {
	return New(&EngineCfg{
		Registry:  s.registry,
		Settler:   s.registry,
		Policy:    policy,
		Ledger:    l,
		Repo:      receipts,
		Tx:        s.store,
		Locker:    locker,
		Publisher: s.publisher,
		Operator:  market,
	})
}

func (s *engineSuite) listed(price string) *music.Token {
	t, err := s.registry.Mint(s.ctx, &music.MintParams{
		Title:    "Song",
		Artist:   "Artist",
		Genre:    "Pop",
		Price:    ether(price),
		AudioURI: "ipfs://audio",
		Creator:  creatorA,
	})
	s.Require().NoError(err)
	t, err = s.registry.SetForSale(s.ctx, t.Id, creatorA, true)
	s.Require().NoError(err)
	return t
}

func (s *engineSuite) fund(account domain.Address, amount string) {
	_, err := s.ledger.Deposit(s.ctx, account, ether(amount))
	s.Require().NoError(err)
}

func (s *engineSuite) balance(account domain.Address) string {
	b, err := s.ledger.BalanceOf(s.ctx, account)
	s.Require().NoError(err)
	return formatter.FormatDisplay(b)
}

func (s *engineSuite) token(id music.Id) *music.Token {
	t, err := s.registry.Get(s.ctx, id)
	s.Require().NoError(err)
	return t
}

func (s *engineSuite) assertUntouched(before *music.Token) {
	after := s.token(before.Id)
	s.Equal(before.Owner, after.Owner)
	s.Equal(before.IsForSale, after.IsForSale)
	s.Equal(before.Approved, after.Approved)
	s.Equal(before.Price.String(), after.Price.String())
	s.Nil(after.SoldAt)

	receipts, err := s.im.FindReceipts(s.ctx, sale.WithTokenId(before.Id))
	s.Require().NoError(err)
	s.Empty(receipts)
	s.Empty(s.publisher.ofType(event.TypeSold))
}

func (s *engineSuite) TestSequentialSaleAndRelist() {
	t := s.listed("1.0")
	s.fund(buyerB, "1.0")

	r, err := s.im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1.0"))
	s.Require().NoError(err)
	s.Equal(creatorA, r.Seller)
	s.Equal(buyerB, r.Buyer)
	s.Equal(creatorA, r.RoyaltyRecipient)
	s.Equal("0.1", formatter.FormatDisplay(r.RoyaltyAmount))
	s.Equal("0.9", formatter.FormatDisplay(r.SellerAmount))
	s.True(r.Refund.IsZero())
	s.Equal(0, r.RoyaltyAmount.Add(r.SellerAmount).Cmp(r.Price))

	sold := s.token(t.Id)
	s.Equal(buyerB, sold.Owner)
	s.False(sold.IsForSale)
	s.Empty(sold.Approved)
	s.NotNil(sold.SoldAt)
	s.Equal(ether("1").String(), sold.LastSalePrice.String())
	s.Equal("1", s.balance(creatorA))
	s.Equal("0", s.balance(buyerB))

	credits, err := s.ledger.Entries(s.ctx, creatorA, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(credits, 2)
	s.Equal("0.9", formatter.FormatDisplay(credits[0].Amount))
	s.Equal("0.1", formatter.FormatDisplay(credits[1].Amount))

	events := s.publisher.ofType(event.TypeSold)
	s.Require().Len(events, 1)
	s.Equal(r.Id, events[0].Receipt.Id)
	s.Equal(buyerB, events[0].Token.Owner)

	// B relists at 2.0 and C buys
	_, err = s.registry.SetForSale(s.ctx, t.Id, buyerB, true)
	s.Require().NoError(err)
	_, err = s.registry.SetPrice(s.ctx, t.Id, buyerB, ether("2.0"))
	s.Require().NoError(err)
	s.fund(buyerC, "2.0")

	r2, err := s.im.ExecuteSale(s.ctx, t.Id, buyerC, ether("2.0"))
	s.Require().NoError(err)
	s.Equal(buyerB, r2.Seller)
	s.Equal("0.2", formatter.FormatDisplay(r2.RoyaltyAmount))
	s.Equal("1.8", formatter.FormatDisplay(r2.SellerAmount))
	s.Equal(buyerC, s.token(t.Id).Owner)
	s.Equal("1.2", s.balance(creatorA))
	s.Equal("1.8", s.balance(buyerB))
	s.Equal("0", s.balance(buyerC))

	byToken, err := s.im.FindReceipts(s.ctx, sale.WithTokenId(t.Id))
	s.Require().NoError(err)
	s.Require().Len(byToken, 2)
	s.Equal(r2.Id, byToken[0].Id)

	byAccount, err := s.im.FindReceipts(s.ctx, sale.WithAccount(buyerC))
	s.Require().NoError(err)
	s.Len(byAccount, 1)
}

func (s *engineSuite) TestNotFound() {
	s.fund(buyerB, "1")
	_, err := s.im.ExecuteSale(s.ctx, 42, buyerB, ether("1"))
	s.True(errors.Is(err, domain.ErrNotFound))
	s.Equal("1", s.balance(buyerB))
}

func (s *engineSuite) TestNotForSale() {
	t := s.listed("1")
	t, err := s.registry.SetForSale(s.ctx, t.Id, creatorA, false)
	s.Require().NoError(err)
	s.fund(buyerB, "1")

	_, err = s.im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.True(errors.Is(err, domain.ErrNotForSale))
	s.assertUntouched(t)
	s.Equal("1", s.balance(buyerB))
	s.Equal("0", s.balance(creatorA))
}

func (s *engineSuite) TestSelfPurchase() {
	t := s.listed("1")
	s.fund(creatorA, "1")

	_, err := s.im.ExecuteSale(s.ctx, t.Id, "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", ether("1"))
	s.True(errors.Is(err, domain.ErrSelfPurchase))
	s.assertUntouched(t)
	s.Equal("1", s.balance(creatorA))
}

func (s *engineSuite) TestInsufficientFunds() {
	t := s.listed("1")
	s.fund(buyerB, "0.5")

	_, err := s.im.ExecuteSale(s.ctx, t.Id, buyerB, ether("0.99"))
	s.True(errors.Is(err, domain.ErrInsufficientFunds), "tender below price")
	s.assertUntouched(t)

	_, err = s.im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.True(errors.Is(err, domain.ErrInsufficientFunds), "balance below tender")
	s.assertUntouched(t)
	s.Equal("0.5", s.balance(buyerB))
	s.Equal("0", s.balance(creatorA))

	_, err = s.im.ExecuteSale(s.ctx, t.Id, buyerB, domain.NewWei(-1))
	s.True(errors.Is(err, domain.ErrInvalidArgument))
}

func (s *engineSuite) TestRefundsExcess() {
	t := s.listed("1")
	s.fund(buyerB, "2")

	r, err := s.im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1.5"))
	s.Require().NoError(err)
	s.Equal("0.5", formatter.FormatDisplay(r.Refund))
	s.Equal("1", s.balance(buyerB))
	s.Equal("1", s.balance(creatorA))
}

func (s *engineSuite) TestConcurrentBuyers() {
	t := s.listed("1")
	s.fund(buyerB, "1")
	s.fund(buyerC, "1")

	var (
		wg      sync.WaitGroup
		results = map[domain.Address]error{}
		mu      sync.Mutex
		start   = make(chan struct{})
	)
	for _, buyer := range []domain.Address{buyerB, buyerC} {
		buyer := buyer
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.im.ExecuteSale(s.ctx, t.Id, buyer, ether("1"))
			mu.Lock()
			results[buyer] = err
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	var winner, loser domain.Address
	for buyer, err := range results {
		if err == nil {
			s.Empty(winner, "only one sale may succeed")
			winner = buyer
		} else {
			s.True(errors.Is(err, domain.ErrNotForSale))
			loser = buyer
		}
	}
	s.Require().NotEmpty(winner)
	s.Require().NotEmpty(loser)

	s.Equal(winner, s.token(t.Id).Owner)
	s.Equal("0", s.balance(winner))
	s.Equal("1", s.balance(loser))
	s.Equal("1", s.balance(creatorA))
	s.Len(s.publisher.ofType(event.TypeSold), 1)
}

func (s *engineSuite) TestRollbackWhenReceiptFails() {
	t := s.listed("1")
	s.fund(buyerB, "1")
	im := s.newEngine(s.ledger, &failingReceipts{s.receipts}, s.policy, s.locker)

	_, err := im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.Error(err)

	s.assertUntouched(t)
	s.Equal("1", s.balance(buyerB))
	s.Equal("0", s.balance(creatorA))
	entries, err := s.ledger.Entries(s.ctx, creatorA, 0, 0)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *engineSuite) TestLedgerFailureAbortsSale() {
	t := s.listed("1")
	l := ledgerMocks.NewUseCase(s.T())
	errLedger := errors.New("ledger unavailable")
	l.On("Debit", mock.Anything, buyerB, mock.Anything, mock.Anything).Return(nil).Once()
	l.On("Credit", mock.Anything, creatorA, mock.Anything, mock.Anything).Return(nil).Once()
	l.On("Credit", mock.Anything, creatorA, mock.Anything, mock.Anything).Return(errLedger).Once()
	im := s.newEngine(l, s.receipts, s.policy, s.locker)

	_, err := im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.ErrorIs(err, errLedger)
	s.assertUntouched(t)
}

func (s *engineSuite) TestBrokenSplitIsInvariantViolation() {
	t := s.listed("1")
	s.fund(buyerB, "1")
	im := s.newEngine(s.ledger, s.receipts, &brokenPolicy{}, s.locker)

	_, err := im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.True(errors.Is(err, domain.ErrInvariantViolation))
	s.assertUntouched(t)
	s.Equal("1", s.balance(buyerB))
}

func (s *engineSuite) TestDelegatedRecipientOnResale() {
	base, err := royaltyUsecase.NewFlat(royaltyUsecase.DefaultBps, royaltyUsecase.NewRecipientResolver(map[string]string{
		string(creatorA): string(delegate),
	}))
	s.Require().NoError(err)
	policy := royaltyUsecase.NewZeroOnFirstSale(base, royaltyUsecase.NewRecipientResolver(nil))
	im := s.newEngine(s.ledger, s.receipts, policy, s.locker)

	t := s.listed("1")
	s.fund(buyerB, "1")
	first, err := im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.Require().NoError(err)
	s.True(first.RoyaltyAmount.IsZero())
	s.Equal("1", s.balance(creatorA))

	_, err = s.registry.SetForSale(s.ctx, t.Id, buyerB, true)
	s.Require().NoError(err)
	s.fund(buyerC, "1")
	resale, err := im.ExecuteSale(s.ctx, t.Id, buyerC, ether("1"))
	s.Require().NoError(err)
	s.Equal(delegate, resale.RoyaltyRecipient)
	s.Equal("0.1", s.balance(delegate))
	s.Equal("0.9", s.balance(buyerB))
}

func (s *engineSuite) TestLockTimeout() {
	t := s.listed("1")
	s.fund(buyerB, "1")
	locker := lock.NewLocal(20 * time.Millisecond)
	im := s.newEngine(s.ledger, s.receipts, s.policy, locker)

	unlock, err := locker.Lock(s.ctx, keys.TokenLockKey(uint64(t.Id)))
	s.Require().NoError(err)
	defer unlock()

	_, err = im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.True(errors.Is(err, domain.ErrLockTimeout))
	s.assertUntouched(t)
}

func (s *engineSuite) TestPriorApprovalNeitherGatesNorSurvivesSale() {
	t := s.listed("1.0")
	_, err := s.registry.Approve(s.ctx, t.Id, creatorA, buyerC)
	s.Require().NoError(err)
	s.Equal(buyerC, s.token(t.Id).Approved)

	s.fund(buyerB, "1.0")
	_, err = s.im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1.0"))
	s.Require().NoError(err)

	sold := s.token(t.Id)
	s.Equal(buyerB, sold.Owner)
	s.True(sold.Approved.IsEmpty())
}

func (s *engineSuite) TestCreatorBuyBackPaysRoyaltyOnResale() {
	flat, err := royaltyUsecase.NewFlat(royaltyUsecase.DefaultBps, royaltyUsecase.NewRecipientResolver(nil))
	s.Require().NoError(err)
	im := s.newEngine(s.ledger, s.receipts, royaltyUsecase.NewZeroOnFirstSale(flat, royaltyUsecase.NewRecipientResolver(nil)), s.locker)

	t := s.listed("1")
	s.fund(buyerB, "1")
	first, err := im.ExecuteSale(s.ctx, t.Id, buyerB, ether("1"))
	s.Require().NoError(err)
	s.True(first.RoyaltyAmount.IsZero())

	_, err = s.registry.SetForSale(s.ctx, t.Id, buyerB, true)
	s.Require().NoError(err)
	buyBack, err := im.ExecuteSale(s.ctx, t.Id, creatorA, ether("1"))
	s.Require().NoError(err)
	s.Equal("0.1", formatter.FormatDisplay(buyBack.RoyaltyAmount))

	_, err = s.registry.SetForSale(s.ctx, t.Id, creatorA, true)
	s.Require().NoError(err)
	s.fund(buyerC, "1")
	resale, err := im.ExecuteSale(s.ctx, t.Id, buyerC, ether("1"))
	s.Require().NoError(err)
	s.Equal(creatorA, resale.Seller)
	s.Equal("0.1", formatter.FormatDisplay(resale.RoyaltyAmount))
	s.Equal("0.9", formatter.FormatDisplay(resale.SellerAmount))
	// 1 from the first sale, -1 +0.1 on buy back, +1 on resale
	s.Equal("1.1", s.balance(creatorA))
}
