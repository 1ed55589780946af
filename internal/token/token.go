package token

import (
	"sync"

	"github.com/shopspring/decimal"

	"otc_go/internal/domain"
)

// Token is an in-process fungible token with standard balance/allowance
// semantics. Amounts are whole base units (no fractional sub-units).
//
// Quiet mode models tokens that signal failure through a false success
// indicator instead of an error; the market must handle both styles.
type Token struct {
	mu         sync.RWMutex
	asset      domain.Asset
	balances   map[string]decimal.Decimal
	allowances map[string]map[string]decimal.Decimal
	quiet      bool
}

// New creates a token for the given asset identity.
func New(asset domain.Asset) *Token {
	return &Token{
		asset:      asset,
		balances:   make(map[string]decimal.Decimal),
		allowances: make(map[string]map[string]decimal.Decimal),
	}
}

// NewQuiet creates a token that reports transfer failures as (false, nil)
// instead of returning an error.
func NewQuiet(asset domain.Asset) *Token {
	t := New(asset)
	t.quiet = true
	return t
}

// Asset returns the token's identity metadata.
func (t *Token) Asset() domain.Asset { return t.asset }

// Decimals returns the asset's display precision.
func (t *Token) Decimals() int32 { return t.asset.Decimals }

// Mint credits freshly created units to an account. Funding harness only;
// no market operation mints.
func (t *Token) Mint(account string, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[account] = t.balances[account].Add(amount)
}

// BalanceOf returns the current balance of an account.
func (t *Token) BalanceOf(account string) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[account]
}

// Approve sets spender's allowance over owner's funds. Overwrites any
// previous allowance.
func (t *Token) Approve(owner, spender string, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[string]decimal.Decimal)
		t.allowances[owner] = m
	}
	m[spender] = amount
}

// Allowance returns how much spender may move out of owner's balance.
func (t *Token) Allowance(owner, spender string) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowances[owner][spender]
}

// Transfer moves amount from `from` to `to`. The caller vouches for
// `from`'s authority, so no allowance is consumed.
func (t *Token) Transfer(from, to string, amount decimal.Decimal) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from].LessThan(amount) {
		return t.fail(domain.ErrInsufficientBalance)
	}
	t.move(from, to, amount)
	return true, nil
}

// TransferFrom moves amount from `from` to `to` on behalf of spender,
// consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to string, amount decimal.Decimal) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.allowances[from][spender].LessThan(amount) {
		return t.fail(domain.ErrInsufficientAllowance)
	}
	if t.balances[from].LessThan(amount) {
		return t.fail(domain.ErrInsufficientBalance)
	}
	t.allowances[from][spender] = t.allowances[from][spender].Sub(amount)
	t.move(from, to, amount)
	return true, nil
}

// move assumes t.mu is held and balances were checked.
func (t *Token) move(from, to string, amount decimal.Decimal) {
	t.balances[from] = t.balances[from].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)
}

func (t *Token) fail(err error) (bool, error) {
	if t.quiet {
		return false, nil
	}
	return false, err
}

// Registry resolves asset addresses to their token contracts.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewRegistry creates an empty token registry.
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]*Token)}
}

// Register adds a token under its asset address.
func (r *Registry) Register(t *Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.asset.Address] = t
}

// Resolve implements domain.TokenResolver.
func (r *Registry) Resolve(address string) (domain.Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[address]
	if !ok {
		return nil, false
	}
	return t, true
}

// Get returns the concrete token, for funding and assertions.
func (r *Registry) Get(address string) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[address]
	return t, ok
}
