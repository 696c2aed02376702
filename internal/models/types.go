package models

// Chain identifies the blockchain a record belongs to.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainSui      Chain = "sui"
)

func (c Chain) IsValid() bool {
	switch c {
	case ChainEthereum, ChainSui:
		return true
	}
	return false
}

// Network identifies the deployment network within a chain.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkLocal   Network = "local"
)

// DefaultNetwork is applied when a create request leaves the network out.
const DefaultNetwork = NetworkTestnet

func (n Network) IsValid() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkDevnet, NetworkLocal:
		return true
	}
	return false
}
