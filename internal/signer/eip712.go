package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EIP-712 domain of the Polymarket CTF Exchange on Polygon.
const (
	domainName    = "Polymarket CTF Exchange"
	domainVersion = "1"

	// ExchangeContract is the CTF Exchange verifying contract.
	ExchangeContract = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
)

var (
	domainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

	// orderTypeHash matches the exchange's Order struct definition. The
	// "clobtypes.Order" primary type name is what the venue verifies against.
	orderTypeHash = crypto.Keccak256Hash([]byte(
		"clobtypes.Order(uint256 salt,address maker,address signer,address taker,uint256 tokenId,uint256 makerAmount,uint256 takerAmount,uint256 expiration,uint256 nonce,uint256 feeRateBps,uint8 side,uint8 signatureType)"))
)

// Order is the flat exchange order struct as signed on-chain. Amounts are in
// base units (USDC 6 decimals, shares 6 decimals).
type Order struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          uint8 // 0 buy, 1 sell
	SignatureType uint8
}
