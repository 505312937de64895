package genesis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/thesecretlab-dev/poevm/balances"
)

var ErrInvalidGenesis = errors.New("invalid genesis")

type CustomAllocation struct {
	// Name derives Address with DevAddress when Address is left empty.
	Name    string      `json:"name,omitempty"`
	Address ids.ShortID `json:"address"`
	Balance uint64      `json:"balance"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation"`

	// TotalSupply, when set, must equal the sum of all allocations.
	TotalSupply uint64 `json:"totalSupply,omitempty"`
}

// DevAddress derives a deterministic address from a human-readable name. It
// is meant for fixtures and local runs, not for real accounts.
func DevAddress(name string) ids.ShortID {
	return ids.ShortID(hashing.ComputeHash160Array([]byte(name)))
}

// Default funds "jae" with 100.
func Default() *Genesis {
	return &Genesis{
		CustomAllocation: []*CustomAllocation{
			{
				Name:    "jae",
				Address: DevAddress("jae"),
				Balance: 100,
			},
		},
		TotalSupply: 100,
	}
}

func Load(genesisBytes []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGenesis, err)
	}
	applyDefaults(g)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func applyDefaults(g *Genesis) {
	for _, alloc := range g.CustomAllocation {
		if alloc == nil {
			continue
		}
		if alloc.Address == ids.ShortEmpty && alloc.Name != "" {
			alloc.Address = DevAddress(alloc.Name)
		}
	}
}

func (g *Genesis) Validate() error {
	seen := make(map[ids.ShortID]struct{}, len(g.CustomAllocation))
	var allocSum uint64
	for i, alloc := range g.CustomAllocation {
		if alloc == nil {
			return fmt.Errorf("%w: allocation %d is null", ErrInvalidGenesis, i)
		}
		if alloc.Address == ids.ShortEmpty {
			return fmt.Errorf("%w: allocation %d has no address or name", ErrInvalidGenesis, i)
		}
		if _, ok := seen[alloc.Address]; ok {
			return fmt.Errorf("%w: duplicate allocation for %s", ErrInvalidGenesis, alloc.Address)
		}
		seen[alloc.Address] = struct{}{}

		next, err := smath.Add(allocSum, alloc.Balance)
		if err != nil {
			return fmt.Errorf("%w: allocations overflow: %w", ErrInvalidGenesis, err)
		}
		allocSum = next
	}
	if g.TotalSupply != 0 && allocSum != g.TotalSupply {
		return fmt.Errorf(
			"%w: totalSupply=%d, computed=%d",
			ErrInvalidGenesis,
			g.TotalSupply,
			allocSum,
		)
	}
	return nil
}

// InitializeState writes every allocation into the ledger.
func (g *Genesis) InitializeState(ledger *balances.Pallet) error {
	for _, alloc := range g.CustomAllocation {
		if err := ledger.SetBalance(alloc.Address, alloc.Balance); err != nil {
			return err
		}
	}
	return nil
}
