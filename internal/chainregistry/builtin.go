package chainregistry

import (
	"github.com/gabapcia/walletscope/internal/infra/chain/cosmos"
	"github.com/gabapcia/walletscope/internal/infra/chain/evm"
	"github.com/gabapcia/walletscope/internal/infra/chain/solana"
	"github.com/gabapcia/walletscope/internal/infra/chain/substrate"
)

const DefaultSolanaRPC = "https://api.mainnet-beta.solana.com"

var builtinEVM = []evm.Config{
	{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", ExplorerURL: "https://etherscan.io", APIBase: "https://eth.blockscout.com", APIType: evm.APIBlockscout},
	{ID: "base", Name: "Base", Symbol: "ETH", ExplorerURL: "https://basescan.org", APIBase: "https://base.blockscout.com", APIType: evm.APIBlockscout},
	{ID: "optimism", Name: "Optimism", Symbol: "ETH", ExplorerURL: "https://optimistic.etherscan.io", APIBase: "https://optimism.blockscout.com", APIType: evm.APIBlockscout},
	{ID: "arbitrum", Name: "Arbitrum One", Symbol: "ETH", ExplorerURL: "https://arbiscan.io", APIBase: "https://arbitrum.blockscout.com", APIType: evm.APIBlockscout},
	{ID: "gnosis", Name: "Gnosis", Symbol: "xDAI", ExplorerURL: "https://gnosisscan.io", APIBase: "https://gnosis.blockscout.com", APIType: evm.APIBlockscout},
	{ID: "polygon", Name: "Polygon", Symbol: "POL", ExplorerURL: "https://polygonscan.com", APIBase: "https://api.etherscan.io/v2/api?chainid=137", APIType: evm.APIEtherscan},
	{ID: "bsc", Name: "BNB Smart Chain", Symbol: "BNB", ExplorerURL: "https://bscscan.com", APIBase: "https://api.etherscan.io/v2/api?chainid=56", APIType: evm.APIEtherscan},
	{ID: "avalanche", Name: "Avalanche C-Chain", Symbol: "AVAX", ExplorerURL: "https://snowtrace.io", APIBase: "https://api.etherscan.io/v2/api?chainid=43114", APIType: evm.APIEtherscan},
}

var builtinCosmos = []cosmos.Config{
	{
		ID: "cosmoshub", Name: "Cosmos Hub", Symbol: "ATOM", ExplorerURL: "https://www.mintscan.io/cosmos",
		AddressPrefix: "cosmos", Denom: "uatom", Decimals: 6,
		LCDEndpoints: []string{"https://cosmos-rest.publicnode.com", "https://rest.cosmos.directory/cosmoshub"},
	},
	{
		ID: "osmosis", Name: "Osmosis", Symbol: "OSMO", ExplorerURL: "https://www.mintscan.io/osmosis",
		AddressPrefix: "osmo", Denom: "uosmo", Decimals: 6,
		LCDEndpoints: []string{"https://osmosis-rest.publicnode.com", "https://rest.cosmos.directory/osmosis"},
	},
	{
		ID: "celestia", Name: "Celestia", Symbol: "TIA", ExplorerURL: "https://www.mintscan.io/celestia",
		AddressPrefix: "celestia", Denom: "utia", Decimals: 6,
		LCDEndpoints: []string{"https://celestia-rest.publicnode.com", "https://rest.cosmos.directory/celestia"},
	},
	{
		ID: "akash", Name: "Akash", Symbol: "AKT", ExplorerURL: "https://www.mintscan.io/akash",
		AddressPrefix: "akash", Denom: "uakt", Decimals: 6,
		LCDEndpoints: []string{"https://akash-rest.publicnode.com", "https://rest.cosmos.directory/akash"},
	},
	{
		ID: "injective", Name: "Injective", Symbol: "INJ", ExplorerURL: "https://www.mintscan.io/injective",
		AddressPrefix: "inj", Denom: "inj", Decimals: 18,
		LCDEndpoints: []string{"https://injective-rest.publicnode.com", "https://rest.cosmos.directory/injective"},
	},
}

var builtinSubstrate = []substrate.Config{
	{ID: "polkadot", Name: "Polkadot", Symbol: "DOT", ExplorerURL: "https://polkadot.subscan.io", SubscanBase: "https://polkadot.api.subscan.io", Decimals: 10, SS58Prefix: prefix(0)},
	{ID: "kusama", Name: "Kusama", Symbol: "KSM", ExplorerURL: "https://kusama.subscan.io", SubscanBase: "https://kusama.api.subscan.io", Decimals: 12, SS58Prefix: prefix(2)},
	{ID: "astar", Name: "Astar", Symbol: "ASTR", ExplorerURL: "https://astar.subscan.io", SubscanBase: "https://astar.api.subscan.io", Decimals: 18, SS58Prefix: prefix(5)},
}

var builtinSolana = solana.Config{
	ID:          "solana",
	Name:        "Solana",
	Symbol:      "SOL",
	ExplorerURL: "https://solscan.io",
}

func prefix(p uint16) *uint16 {
	return &p
}
