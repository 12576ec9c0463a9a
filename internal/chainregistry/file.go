package chainregistry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gabapcia/walletscope/internal/infra/chain/cosmos"
	"github.com/gabapcia/walletscope/internal/infra/chain/evm"
	"github.com/gabapcia/walletscope/internal/infra/chain/substrate"
)

// chainsFile is the layout of CHAINS_FILE:
//
//	evm:
//	  - id: scroll
//	    name: Scroll
//	    symbol: ETH
//	    explorer_url: https://scrollscan.com
//	    api_base: https://scroll.blockscout.com
//	    api_type: blockscout
//	cosmos:
//	  - id: juno
//	    ...
type chainsFile struct {
	EVM       []evm.Config       `yaml:"evm"`
	Cosmos    []cosmos.Config    `yaml:"cosmos"`
	Substrate []substrate.Config `yaml:"substrate"`
}

func loadChainsFile(path string) (chainsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chainsFile{}, fmt.Errorf("read chains file: %w", err)
	}

	var f chainsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return chainsFile{}, fmt.Errorf("parse chains file %s: %w", path, err)
	}

	return f, nil
}
