package mongoclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/musicnft/base/ptr"
)

type patchableTrack struct {
	Owner     *string    `bson:"owner,omitempty"`
	IsForSale *bool      `bson:"isForSale,omitempty"`
	Plays     *int       `bson:"plays,omitempty"`
	SoldAt    *time.Time `bson:"soldAt,omitempty"`
	Genre     string     `bson:"genre"`
	Note      string     `bson:"note"`
	Ignored   string     `bson:"-"`
	internal  string
}

func TestMakeBsonM(t *testing.T) {
	soldAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		desc      string
		patchable interface{}
		exp       bson.M
	}{
		{
			desc: "delist keeps the false flag",
			patchable: &patchableTrack{
				IsForSale: ptr.Bool(false),
				SoldAt:    ptr.Time(soldAt),
			},
			exp: bson.M{"isForSale": false, "soldAt": soldAt},
		},
		{
			desc: "clearing approval keeps the empty string",
			patchable: &patchableTrack{
				Owner: ptr.String(""),
				Plays: ptr.Int(10),
				Note:  "b-side",
			},
			exp: bson.M{"owner": "", "plays": 10, "note": "b-side"},
		},
		{
			desc:      "skipped and unexported fields are left out",
			patchable: patchableTrack{Ignored: "x", internal: "y", Genre: "Jazz"},
			exp:       bson.M{"genre": "Jazz"},
		},
		{
			desc:      "empty patch",
			patchable: &patchableTrack{},
			exp:       bson.M{},
		},
	}
	for _, tt := range tests {
		got, err := MakeBsonM(tt.patchable)
		require.NoError(t, err, tt.desc)
		require.Equal(t, tt.exp, got, tt.desc)
	}

	_, err := MakeBsonM("not a patch")
	require.ErrorIs(t, err, ErrNotStruct)
}
