// Package signer implements direct EIP-712 order signing for the CTF
// Exchange. The domain separator is computed once at construction so the per
// order cost is two keccak hashes and one ECDSA sign.
package signer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type Signer struct {
	key             *ecdsa.PrivateKey
	address         common.Address
	chainID         *big.Int
	domainSeparator common.Hash
}

// NewSigner parses the hex private key (without 0x prefix) and precomputes
// the exchange domain separator for the given chain.
func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, errors.New("private key is required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	pub, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("unexpected public key type")
	}

	return &Signer{
		key:             key,
		address:         crypto.PubkeyToAddress(*pub),
		chainID:         big.NewInt(chainID),
		domainSeparator: domainSeparator(chainID),
	}, nil
}

// domainSeparator is keccak256(abi.encode(domainTypeHash, keccak256(name),
// keccak256(version), chainId, verifyingContract)), encoded by hand since
// every field is a fixed 32-byte word.
func domainSeparator(chainID int64) common.Hash {
	data := make([]byte, 32*5)
	copy(data[0:32], domainTypeHash.Bytes())
	copy(data[32:64], crypto.Keccak256([]byte(domainName)))
	copy(data[64:96], crypto.Keccak256([]byte(domainVersion)))
	copy(data[96:128], math.U256Bytes(big.NewInt(chainID)))
	copy(data[128+12:160], common.HexToAddress(ExchangeContract).Bytes())
	return crypto.Keccak256Hash(data)
}

func (s *Signer) Address() common.Address {
	return s.address
}

func (s *Signer) ChainID() *big.Int {
	return s.chainID
}

// SignOrder returns the 65-byte hex signature over the EIP-191 digest of the
// order. V is normalized to 27/28.
func (s *Signer) SignOrder(order *Order) (string, error) {
	structHash := hashOrder(order)
	digest := crypto.Keccak256([]byte{0x19, 0x01}, s.domainSeparator.Bytes(), structHash)

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

// hashOrder is hashStruct(order): typeHash plus twelve 32-byte words.
func hashOrder(order *Order) []byte {
	data := make([]byte, 32*13)
	copy(data[0:32], orderTypeHash.Bytes())

	words := []*big.Int{
		order.Salt,
		nil, nil, nil, // addresses handled below
		order.TokenID,
		order.MakerAmount,
		order.TakerAmount,
		order.Expiration,
		order.Nonce,
		order.FeeRateBps,
		big.NewInt(int64(order.Side)),
		big.NewInt(int64(order.SignatureType)),
	}
	for i, w := range words {
		if w == nil {
			continue
		}
		offset := 32 * (i + 1)
		copy(data[offset:offset+32], math.U256Bytes(w))
	}

	copy(data[64+12:96], order.Maker.Bytes())
	copy(data[96+12:128], order.Signer.Bytes())
	copy(data[128+12:160], order.Taker.Bytes())

	return crypto.Keccak256(data)
}

// StaticSigner carries an address and chain id for SDK order building but
// refuses to sign; the actual signature always comes from Signer.
type StaticSigner struct {
	address common.Address
	chainID *big.Int
}

func NewStaticSigner(address string, chainID int64) (*StaticSigner, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid signer address: %s", address)
	}
	return &StaticSigner{
		address: common.HexToAddress(address),
		chainID: big.NewInt(chainID),
	}, nil
}

func (s *StaticSigner) Address() common.Address {
	return s.address
}

func (s *StaticSigner) ChainID() *big.Int {
	return s.chainID
}

func (s *StaticSigner) SignTypedData(_ *apitypes.TypedDataDomain, _ apitypes.Types, _ apitypes.TypedDataMessage, _ string) ([]byte, error) {
	return nil, errors.New("static signer cannot sign")
}
