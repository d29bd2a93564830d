package tokenmeta

// wellKnown bundles metadata for the highest-traffic tokens per network so
// their lookups never reach the chain.
var wellKnown = map[string]map[string]Metadata{
	"mainnet": indexByContract(
		Metadata{ContractID: "wrap.near", Name: "Wrapped NEAR", Symbol: "wNEAR", Decimals: 24},
		Metadata{ContractID: "usdt.tether-token.near", Name: "Tether USD", Symbol: "USDt", Decimals: 6},
		Metadata{ContractID: "17208628f84f5d6ad33f0da3bbbeb27ffcb398eac501a31bd6ad2011e36133a1", Name: "USDC", Symbol: "USDC", Decimals: 6},
		Metadata{ContractID: "token.sweat", Name: "Sweat Economy", Symbol: "SWEAT", Decimals: 18},
		Metadata{ContractID: "aaaaaa20d9e0e2461697782ef11675f668207961.factory.bridge.near", Name: "Aurora", Symbol: "AURORA", Decimals: 18},
		Metadata{ContractID: "token.v2.ref-finance.near", Name: "Ref Finance", Symbol: "REF", Decimals: 18},
		Metadata{ContractID: "linear-protocol.near", Name: "LiNEAR", Symbol: "LiNEAR", Decimals: 24},
		Metadata{ContractID: "meta-pool.near", Name: "Staked NEAR", Symbol: "stNEAR", Decimals: 24},
		Metadata{ContractID: "dac17f958d2ee523a2206206994597c13d831ec7.factory.bridge.near", Name: "Tether USD (Bridged)", Symbol: "USDT.e", Decimals: 6},
		Metadata{ContractID: "a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.factory.bridge.near", Name: "USD Coin (Bridged)", Symbol: "USDC.e", Decimals: 6},
	),
	"testnet": indexByContract(
		Metadata{ContractID: "wrap.testnet", Name: "Wrapped NEAR", Symbol: "wNEAR", Decimals: 24},
	),
}

func indexByContract(tokens ...Metadata) map[string]Metadata {
	out := make(map[string]Metadata, len(tokens))
	for _, token := range tokens {
		out[token.ContractID] = token
	}
	return out
}

// wellKnownToken looks up a bundled token for the given network.
func wellKnownToken(network, contractID string) (Metadata, bool) {
	meta, ok := wellKnown[network][contractID]
	return meta, ok
}
