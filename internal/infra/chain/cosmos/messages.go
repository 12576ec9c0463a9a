package cosmos

import (
	"encoding/json"
	"strings"

	"github.com/gabapcia/walletscope/internal/ledger"
)

// Cosmos-specific record types.
const (
	TypeIBCTransfer = "ibc_transfer"
	TypeRedelegate  = "redelegate"
	TypeJoinPool    = "join_pool"
	TypeExitPool    = "exit_pool"
	TypeVote        = "vote"
)

// message is the union of the fields read from the supported message types.
type message struct {
	Type string `json:"@type"`

	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	Amount      json.RawMessage `json:"amount"`

	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Token    *coin  `json:"token"`

	TokenIn       *coin  `json:"token_in"`
	TokenOut      *coin  `json:"token_out"`
	TokenInMaxs   []coin `json:"token_in_maxs"`
	PoolID        string `json:"pool_id"`
	ShareInAmount string `json:"share_in_amount"`

	DelegatorAddress    string `json:"delegator_address"`
	ValidatorAddress    string `json:"validator_address"`
	ValidatorDstAddress string `json:"validator_dst_address"`

	Voter      string `json:"voter"`
	ProposalID string `json:"proposal_id"`

	Contract string `json:"contract"`
	Funds    []coin `json:"funds"`
}

// amountCoin reads Amount, which is a coin list for MsgSend and a single
// coin for staking messages.
func (m message) amountCoin() *coin {
	if len(m.Amount) == 0 {
		return nil
	}

	var coins []coin
	if err := json.Unmarshal(m.Amount, &coins); err == nil {
		if len(coins) == 0 {
			return nil
		}
		return &coins[0]
	}

	var c coin
	if err := json.Unmarshal(m.Amount, &c); err == nil && c.Denom != "" {
		return &c
	}

	return nil
}

// movement is what a message means for the queried address.
type movement struct {
	txType string
	from   string
	to     string
	coin   *coin
	known  bool
}

type rule func(m message, tx txResponse) movement

// rules is keyed by the message type name, the last segment of @type.
var rules = map[string]rule{
	"MsgSend": func(m message, _ txResponse) movement {
		return movement{txType: ledger.TypeTransfer, from: m.FromAddress, to: m.ToAddress, coin: m.amountCoin()}
	},
	"MsgTransfer": func(m message, _ txResponse) movement {
		return movement{txType: TypeIBCTransfer, from: m.Sender, to: m.Receiver, coin: m.Token}
	},
	"MsgSwapExactAmountIn": func(m message, _ txResponse) movement {
		return movement{txType: ledger.TypeSwap, from: m.Sender, coin: m.TokenIn}
	},
	"MsgSwapExactAmountOut": func(m message, _ txResponse) movement {
		return movement{txType: ledger.TypeSwap, from: m.Sender, coin: m.TokenOut}
	},
	"MsgDelegate": func(m message, _ txResponse) movement {
		return movement{txType: ledger.TypeStake, from: m.DelegatorAddress, to: m.ValidatorAddress, coin: m.amountCoin()}
	},
	"MsgUndelegate": func(m message, _ txResponse) movement {
		return movement{txType: ledger.TypeUnstake, from: m.ValidatorAddress, to: m.DelegatorAddress, coin: m.amountCoin()}
	},
	"MsgBeginRedelegate": func(m message, _ txResponse) movement {
		return movement{txType: TypeRedelegate, from: m.DelegatorAddress, to: m.ValidatorDstAddress, coin: m.amountCoin()}
	},
	"MsgWithdrawDelegatorReward": func(m message, tx txResponse) movement {
		mv := movement{txType: ledger.TypeClaim, from: m.ValidatorAddress, to: m.DelegatorAddress}
		if reward, ok := tx.eventCoin("withdraw_rewards", "amount"); ok {
			mv.coin = &reward
		}
		return mv
	},
	"MsgJoinPool": func(m message, _ txResponse) movement {
		mv := movement{txType: TypeJoinPool, from: m.Sender}
		if len(m.TokenInMaxs) > 0 {
			mv.coin = &m.TokenInMaxs[0]
		}
		return mv
	},
	"MsgExitPool": func(m message, _ txResponse) movement {
		return movement{txType: TypeExitPool, to: m.Sender, coin: &coin{Denom: "gamm/pool/" + m.PoolID, Amount: m.ShareInAmount}}
	},
	"MsgVote": func(m message, _ txResponse) movement {
		return movement{txType: TypeVote, from: m.Voter}
	},
	"MsgExecuteContract": func(m message, _ txResponse) movement {
		mv := movement{txType: ledger.TypeContract, from: m.Sender, to: m.Contract}
		if len(m.Funds) > 0 {
			mv.coin = &m.Funds[0]
		}
		return mv
	},
}

// typeName returns the last segment of a message @type, e.g. "MsgSend" for
// "/cosmos.bank.v1beta1.MsgSend".
func typeName(msgType string) string {
	return msgType[strings.LastIndex(msgType, ".")+1:]
}

// classify interprets the first message of tx.
func classify(m message, tx txResponse) movement {
	name := typeName(m.Type)
	if r, ok := rules[name]; ok {
		mv := r(m, tx)
		mv.known = true
		return mv
	}

	fallback := strings.ToLower(strings.TrimPrefix(name, "Msg"))
	if fallback == "" {
		fallback = ledger.TypeContract
	}

	return movement{txType: fallback}
}
