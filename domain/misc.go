package domain

import (
	"strings"
)

// Table is the name of a collection in the backing store
type Table string

const (
	TableMusicTokens    Table = "music_tokens"
	TableCounters       Table = "counters"
	TableLedgerBalances Table = "ledger_balances"
	TableLedgerEntries  Table = "ledger_entries"
	TableSaleReceipts   Table = "sale_receipts"
)

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

// IsEmpty reports both the unset and the zero address
func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}
