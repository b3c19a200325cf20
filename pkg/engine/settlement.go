package engine

// SettlementInstruction tells the external ledgers which counterparty owes
// what to whom for one fill. Counterparty1 is always the maker (the resting
// order's owner) and Amount1/Asset1 the leg the maker sends; Counterparty2 is
// the taker with the taker's leg. One leg is base asset lots, the other is
// term asset lots*price, and Price is the maker's resting price.
//
// Instructions are immutable once appended to the log.
type SettlementInstruction struct {
	Counterparty1 string `json:"counterparty_1"`
	Amount1       int64  `json:"amount_1"`
	Asset1        string `json:"asset_1"`
	Counterparty2 string `json:"counterparty_2"`
	Amount2       int64  `json:"amount_2"`
	Asset2        string `json:"asset_2"`
	Price         int64  `json:"price"`
}

// settlementLog is the append-only record of completed settlements for one
// trading session. Cleared only by an explicit reset.
type settlementLog struct {
	entries []SettlementInstruction
}

func (l *settlementLog) append(in SettlementInstruction) int {
	l.entries = append(l.entries, in)
	return len(l.entries) - 1
}

func (l *settlementLog) count() int {
	return len(l.entries)
}

func (l *settlementLog) get(i int) (SettlementInstruction, error) {
	if i < 0 || i >= len(l.entries) {
		return SettlementInstruction{}, ErrSettlementIndex
	}
	return l.entries[i], nil
}

func (l *settlementLog) reset() {
	l.entries = nil
}
