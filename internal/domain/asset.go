package domain

// Asset is the identity of a tradeable asset contract.
// This is strictly identity metadata — it does NOT carry quantity/balance.
type Asset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}
