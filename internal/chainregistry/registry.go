// Package chainregistry builds every chain adapter once at startup and
// resolves them by chain id.
package chainregistry

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/gabapcia/walletscope/internal/infra/chain/cosmos"
	"github.com/gabapcia/walletscope/internal/infra/chain/evm"
	"github.com/gabapcia/walletscope/internal/infra/chain/perps/hyperliquid"
	"github.com/gabapcia/walletscope/internal/infra/chain/solana"
	"github.com/gabapcia/walletscope/internal/infra/chain/substrate"
	"github.com/gabapcia/walletscope/internal/ledger"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
	"github.com/gabapcia/walletscope/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletscope/internal/pkg/types"
)

// Family groups chains that share an adapter implementation.
type Family string

const (
	FamilyEVM       Family = "evm"
	FamilyCosmos    Family = "cosmos"
	FamilySubstrate Family = "substrate"
	FamilySolana    Family = "solana"
	FamilyPerps     Family = "perps"
)

// UserAgent identifies walletscope to every data source.
const UserAgent = "walletscope"

// Request pacing for sources with published per-IP limits.
const (
	SubscanRateLimit = 5
	SolanaRateLimit  = 8
)

// ChainInfo describes a registered chain for listings.
type ChainInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Family Family `json:"family"`
}

// Deps carries the runtime settings adapters are built with.
type Deps struct {
	// RelayURL is the base URL of the CORS relay. Empty means Cosmos LCD
	// requests go out directly.
	RelayURL string

	HTTPTimeout     time.Duration
	EtherscanAPIKey string
	SubscanAPIKey   string
	SolanaRPC       string
	HyperliquidURL  string

	// ChainsFile is an optional YAML file declaring extra EVM, Cosmos and
	// Substrate chains.
	ChainsFile string
}

type config struct {
	builtins bool
	httpOpts []transporthttp.Option
}

// Option configures the registry.
type Option func(*config)

// WithBuiltins controls whether the built-in chain tables are registered.
// Defaults to true.
func WithBuiltins(enabled bool) Option {
	return func(c *config) {
		c.builtins = enabled
	}
}

// WithHTTPOptions appends options to every HTTP client the registry builds.
func WithHTTPOptions(opts ...transporthttp.Option) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, opts...)
	}
}

// Registry maps chain ids to adapters. It is immutable after New returns.
type Registry struct {
	adapters   map[string]ledger.Adapter
	chains     []ChainInfo
	relayHosts []string
}

// New builds every adapter. Duplicate chain ids and invalid chain configs
// are construction errors.
func New(ctx context.Context, deps Deps, opts ...Option) (*Registry, error) {
	cfg := config{builtins: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &builder{
		deps:     deps,
		httpOpts: cfg.httpOpts,
		reg: &Registry{
			adapters: make(map[string]ledger.Adapter),
		},
		hosts: types.NewSet[string](),
	}

	var file chainsFile
	if deps.ChainsFile != "" {
		f, err := loadChainsFile(deps.ChainsFile)
		if err != nil {
			return nil, err
		}
		file = f
	}

	var evmChains []evm.Config
	var cosmosChains []cosmos.Config
	var substrateChains []substrate.Config
	if cfg.builtins {
		evmChains = append(evmChains, builtinEVM...)
		cosmosChains = append(cosmosChains, builtinCosmos...)
		substrateChains = append(substrateChains, builtinSubstrate...)
	}
	evmChains = append(evmChains, file.EVM...)
	cosmosChains = append(cosmosChains, file.Cosmos...)
	substrateChains = append(substrateChains, file.Substrate...)

	for _, c := range evmChains {
		if err := b.addEVM(c); err != nil {
			return nil, err
		}
	}

	for _, c := range cosmosChains {
		if err := b.addCosmos(c); err != nil {
			return nil, err
		}
	}

	for _, c := range substrateChains {
		if err := b.addSubstrate(c); err != nil {
			return nil, err
		}
	}

	if cfg.builtins {
		if err := b.addSolana(builtinSolana); err != nil {
			return nil, err
		}

		if err := b.addHyperliquid(); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(b.reg.chains, func(x, y ChainInfo) int {
		return cmp.Compare(x.ID, y.ID)
	})

	b.reg.relayHosts = types.Sorted(b.hosts)

	logger.Info(ctx, "chain registry ready", "chains", len(b.reg.chains), "relay_hosts", len(b.reg.relayHosts))

	return b.reg, nil
}

// Lookup returns the adapter registered for id.
func (r *Registry) Lookup(id string) (ledger.Adapter, error) {
	adapter, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ledger.ErrUnknownChain, id)
	}

	return adapter, nil
}

// Chains lists every registered chain sorted by id.
func (r *Registry) Chains() []ChainInfo {
	return slices.Clone(r.chains)
}

// RelayHosts returns the hostnames adapters reach through the relay, sorted.
// The relay uses it as its allow-list.
func (r *Registry) RelayHosts() []string {
	return slices.Clone(r.relayHosts)
}

type builder struct {
	deps     Deps
	httpOpts []transporthttp.Option
	reg      *Registry
	hosts    types.Set[string]
}

func (b *builder) client(opts ...transporthttp.Option) *transporthttp.Client {
	all := []transporthttp.Option{transporthttp.WithHeader("User-Agent", UserAgent)}
	if b.deps.HTTPTimeout > 0 {
		all = append(all, transporthttp.WithTimeout(b.deps.HTTPTimeout))
	}
	all = append(all, opts...)
	all = append(all, b.httpOpts...)

	return transporthttp.NewClient(all...)
}

func (b *builder) register(adapter ledger.Adapter, info ChainInfo) error {
	if _, exists := b.reg.adapters[info.ID]; exists {
		return fmt.Errorf("duplicate chain id %q", info.ID)
	}

	b.reg.adapters[info.ID] = adapter
	b.reg.chains = append(b.reg.chains, info)

	return nil
}

func (b *builder) addEVM(c evm.Config) error {
	if c.APIType == evm.APIEtherscan && c.APIKey == "" {
		c.APIKey = b.deps.EtherscanAPIKey
	}

	adapter, err := evm.New(c, b.client())
	if err != nil {
		return err
	}

	return b.register(adapter, ChainInfo{ID: c.ID, Name: c.Name, Symbol: c.Symbol, Family: FamilyEVM})
}

// addCosmos disables retries so a failing LCD endpoint fails over at once,
// and routes the adapter through the relay when one is configured.
func (b *builder) addCosmos(c cosmos.Config) error {
	opts := []transporthttp.Option{transporthttp.WithRetryMax(0)}
	if b.deps.RelayURL != "" {
		opts = append(opts, transporthttp.WithRelay(b.deps.RelayURL))
	}

	adapter, err := cosmos.New(c, b.client(opts...))
	if err != nil {
		return err
	}

	if err := b.register(adapter, ChainInfo{ID: c.ID, Name: c.Name, Symbol: c.Symbol, Family: FamilyCosmos}); err != nil {
		return err
	}

	for _, endpoint := range c.LCDEndpoints {
		if u, err := url.Parse(endpoint); err == nil && u.Hostname() != "" {
			b.hosts.Add(u.Hostname())
		}
	}

	return nil
}

func (b *builder) addSubstrate(c substrate.Config) error {
	if c.APIKey == "" {
		c.APIKey = b.deps.SubscanAPIKey
	}

	adapter, err := substrate.New(c, b.client(transporthttp.WithRateLimit(SubscanRateLimit, SubscanRateLimit)))
	if err != nil {
		return err
	}

	return b.register(adapter, ChainInfo{ID: c.ID, Name: c.Name, Symbol: c.Symbol, Family: FamilySubstrate})
}

func (b *builder) addSolana(c solana.Config) error {
	endpoint := b.deps.SolanaRPC
	if endpoint == "" {
		endpoint = DefaultSolanaRPC
	}

	rpc := jsonrpc.NewClient(b.client(transporthttp.WithRateLimit(SolanaRateLimit, SolanaRateLimit)), endpoint)
	adapter, err := solana.New(c, rpc)
	if err != nil {
		return err
	}

	return b.register(adapter, ChainInfo{ID: c.ID, Name: c.Name, Symbol: c.Symbol, Family: FamilySolana})
}

func (b *builder) addHyperliquid() error {
	var opts []hyperliquid.Option
	if b.deps.HyperliquidURL != "" {
		opts = append(opts, hyperliquid.WithEndpoint(b.deps.HyperliquidURL))
	}

	adapter, err := hyperliquid.New(b.client(), opts...)
	if err != nil {
		return err
	}

	return b.register(adapter, ChainInfo{ID: adapter.ChainID(), Name: "Hyperliquid", Symbol: hyperliquid.SettlementToken, Family: FamilyPerps})
}
