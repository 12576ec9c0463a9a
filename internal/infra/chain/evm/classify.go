package evm

import (
	"strings"

	"github.com/gabapcia/walletscope/internal/ledger"
)

// selectors maps well-known 4-byte function selectors to record types.
var selectors = map[string]string{
	"0xa9059cbb": ledger.TypeTransfer, // transfer(address,uint256)
	"0x23b872dd": ledger.TypeTransfer, // transferFrom(address,address,uint256)
	"0x095ea7b3": ledger.TypeApprove,  // approve(address,uint256)
	"0xa22cb465": ledger.TypeApprove,  // setApprovalForAll(address,bool)
	"0x38ed1739": ledger.TypeSwap,     // swapExactTokensForTokens
	"0x7ff36ab5": ledger.TypeSwap,     // swapExactETHForTokens
	"0x18cbafe5": ledger.TypeSwap,     // swapExactTokensForETH
	"0x8803dbee": ledger.TypeSwap,     // swapTokensForExactTokens
	"0xfb3bdb41": ledger.TypeSwap,     // swapETHForExactTokens
	"0x414bf389": ledger.TypeSwap,     // exactInputSingle
	"0xc04b8d59": ledger.TypeSwap,     // exactInput
	"0x5ae401dc": ledger.TypeSwap,     // multicall(uint256,bytes[])
	"0x3593564c": ledger.TypeSwap,     // execute(bytes,bytes[],uint256)
	"0x12aa3caf": ledger.TypeSwap,     // 1inch swap
	"0xa694fc3a": ledger.TypeStake,    // stake(uint256)
	"0x5c19a95c": ledger.TypeStake,    // delegate(address)
	"0x2e17de78": ledger.TypeUnstake,  // unstake(uint256)
	"0x2e1a7d4d": ledger.TypeUnstake,  // withdraw(uint256)
	"0x3d18b912": ledger.TypeClaim,    // getReward()
	"0x4e71d92d": ledger.TypeClaim,    // claim()
	"0x2f52ebb7": ledger.TypeClaim,    // claim(uint256,bytes32[])
}

// keywords classifies decoded method names. Order matters: more specific
// keywords come before the ones they contain.
var keywords = []struct {
	keyword string
	txType  string
}{
	{"approv", ledger.TypeApprove},
	{"swap", ledger.TypeSwap},
	{"exactinput", ledger.TypeSwap},
	{"exactoutput", ledger.TypeSwap},
	{"unstake", ledger.TypeUnstake},
	{"undelegate", ledger.TypeUnstake},
	{"stake", ledger.TypeStake},
	{"delegate", ledger.TypeStake},
	{"claim", ledger.TypeClaim},
	{"getreward", ledger.TypeClaim},
	{"harvest", ledger.TypeClaim},
	{"transfer", ledger.TypeTransfer},
}

// classifyMethod maps a decoded method name such as "swapExactETHForTokens"
// or "transfer(address _to, uint256 _value)" to a record type. An empty
// method is a plain value transfer; an unrecognized one is a contract call.
func classifyMethod(method string) string {
	name := strings.ToLower(methodName(method))
	if name == "" {
		return ledger.TypeTransfer
	}

	for _, k := range keywords {
		if strings.Contains(name, k.keyword) {
			return k.txType
		}
	}

	return ledger.TypeContract
}

// classifyInput classifies an etherscan row by its calldata selector,
// falling back to the decoded function name.
func classifyInput(input, functionName string) string {
	if input == "" || input == "0x" {
		return ledger.TypeTransfer
	}

	if len(input) >= 10 {
		if txType, ok := selectors[strings.ToLower(input[:10])]; ok {
			return txType
		}
	}

	if functionName == "" {
		return ledger.TypeContract
	}

	return classifyMethod(functionName)
}

// methodName strips the argument list from a decoded signature.
func methodName(signature string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(signature), "(")
	return name
}
