package domain

import (
	"encoding/json"
	"math/big"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
	"golang.org/x/xerrors"
)

// Wei is an amount in the smallest currency unit. The zero value is 0 and
// every operation returns a new value.
type Wei struct {
	v *big.Int
}

func NewWei(v int64) Wei {
	return Wei{v: big.NewInt(v)}
}

func WeiFromBig(v *big.Int) Wei {
	if v == nil {
		return Wei{}
	}
	return Wei{v: new(big.Int).Set(v)}
}

// ParseWei parses a base 10 integer
func ParseWei(s string) (Wei, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Wei{}, xerrors.Errorf("parse wei %q: %w", s, ErrInvalidAmount)
	}
	return Wei{v: v}, nil
}

func (w Wei) Big() *big.Int {
	if w.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(w.v)
}

func (w Wei) String() string {
	if w.v == nil {
		return "0"
	}
	return w.v.String()
}

func (w Wei) Sign() int {
	if w.v == nil {
		return 0
	}
	return w.v.Sign()
}

func (w Wei) IsZero() bool {
	return w.Sign() == 0
}

func (w Wei) IsPositive() bool {
	return w.Sign() > 0
}

func (w Wei) Cmp(o Wei) int {
	return w.Big().Cmp(o.Big())
}

func (w Wei) Add(o Wei) Wei {
	return Wei{v: new(big.Int).Add(w.Big(), o.Big())}
}

func (w Wei) Sub(o Wei) Wei {
	return Wei{v: new(big.Int).Sub(w.Big(), o.Big())}
}

// MulDiv returns floor(w * num / den), den must be positive
func (w Wei) MulDiv(num, den int64) Wei {
	v := new(big.Int).Mul(w.Big(), big.NewInt(num))
	return Wei{v: v.Div(v, big.NewInt(den))}
}

func (w Wei) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON accepts both a quoted and a bare integer
func (w *Wei) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return xerrors.Errorf("unmarshal wei: %w", ErrInvalidAmount)
		}
		s = n.String()
	}
	v, err := ParseWei(s)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// MarshalBSONValue stores the amount as a decimal string, int64 can't hold it
func (w Wei) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bsontype.String, bsoncore.AppendString(nil, w.String()), nil
}

func (w *Wei) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*w = Wei{}
		return nil
	case bsontype.String:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return xerrors.Errorf("read wei string: %w", ErrInvalidAmount)
		}
		v, err := ParseWei(s)
		if err != nil {
			return err
		}
		*w = v
		return nil
	default:
		return xerrors.Errorf("unexpected bson type %s for wei: %w", t, ErrInvalidAmount)
	}
}
