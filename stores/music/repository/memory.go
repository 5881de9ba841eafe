package repository

import (
	"sort"

	"github.com/x-xyz/musicnft/base/ctx"
	"github.com/x-xyz/musicnft/domain"
	"github.com/x-xyz/musicnft/domain/music"
	"github.com/x-xyz/musicnft/service/memstore"
	"github.com/x-xyz/musicnft/service/query"
)

type memoryImpl struct {
	store  *memstore.Store
	seq    music.Id
	tokens map[music.Id]*music.Token
}

// NewMemory keeps tokens in process. Writes join memstore transactions.
func NewMemory(store *memstore.Store) music.Repo {
	return &memoryImpl{
		store:  store,
		tokens: map[music.Id]*music.Token{},
	}
}

func (im *memoryImpl) NextId(c ctx.Ctx) (music.Id, error) {
	var id music.Id
	err := im.store.Write(c, func() (func(), error) {
		im.seq++
		id = im.seq
		return func() { im.seq-- }, nil
	})
	return id, err
}

func (im *memoryImpl) Create(c ctx.Ctx, token *music.Token) error {
	return im.store.Write(c, func() (func(), error) {
		if _, ok := im.tokens[token.Id]; ok {
			return nil, query.ErrDuplicateKey
		}
		im.tokens[token.Id] = token.Clone()
		return func() { delete(im.tokens, token.Id) }, nil
	})
}

func (im *memoryImpl) FindOne(c ctx.Ctx, id music.Id) (*music.Token, error) {
	var res *music.Token
	im.store.Read(c, func() {
		if t, ok := im.tokens[id]; ok {
			res = t.Clone()
		}
	})
	if res == nil {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

func (im *memoryImpl) FindAll(c ctx.Ctx, optFns ...music.FindAllOptionsFunc) ([]*music.Token, error) {
	opts, err := music.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("music.GetFindAllOptions failed")
		return nil, err
	}

	res := []*music.Token{}
	im.store.Read(c, func() {
		for _, t := range im.tokens {
			if opts.Match(t) {
				res = append(res, t.Clone())
			}
		}
	})
	sort.Slice(res, func(i, j int) bool { return res[i].Id > res[j].Id })

	if opts.Offset != nil {
		if int(*opts.Offset) >= len(res) {
			return []*music.Token{}, nil
		}
		res = res[*opts.Offset:]
	}
	if opts.Limit != nil && *opts.Limit > 0 && int(*opts.Limit) < len(res) {
		res = res[:*opts.Limit]
	}
	return res, nil
}

func (im *memoryImpl) Count(c ctx.Ctx, optFns ...music.FindAllOptionsFunc) (int, error) {
	opts, err := music.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("music.GetFindAllOptions failed")
		return 0, err
	}

	n := 0
	im.store.Read(c, func() {
		for _, t := range im.tokens {
			if opts.Match(t) {
				n++
			}
		}
	})
	return n, nil
}

func (im *memoryImpl) Patch(c ctx.Ctx, id music.Id, patchable music.PatchableToken) error {
	return im.store.Write(c, func() (func(), error) {
		cur, ok := im.tokens[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		next := cur.Clone()
		patchable.Apply(next)
		im.tokens[id] = next
		return func() { im.tokens[id] = cur }, nil
	})
}
