package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKeyHex(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key))[2:]
}

func sampleOrder(maker common.Address) *Order {
	return &Order{
		Salt:          big.NewInt(123),
		Maker:         maker,
		Signer:        maker,
		Taker:         common.Address{},
		TokenID:       big.NewInt(999),
		MakerAmount:   big.NewInt(1_000_000),
		TakerAmount:   big.NewInt(500_000),
		Expiration:    big.NewInt(0),
		Nonce:         big.NewInt(0),
		FeeRateBps:    big.NewInt(0),
		Side:          0,
		SignatureType: 0,
	}
}

func TestSignOrderProducesRecoverableSignature(t *testing.T) {
	s, err := NewSigner(randomKeyHex(t), 137)
	require.NoError(t, err)

	order := sampleOrder(s.Address())
	sig, err := s.SignOrder(order)
	require.NoError(t, err)
	assert.Equal(t, 132, len(sig)) // 0x + 65 bytes hex

	raw, err := hexutil.Decode(sig)
	require.NoError(t, err)
	require.Equal(t, 65, len(raw))
	if raw[64] >= 27 {
		raw[64] -= 27
	}

	digest := crypto.Keccak256([]byte{0x19, 0x01},
		s.domainSeparator.Bytes(), hashOrder(order))
	pub, err := crypto.SigToPub(digest, raw)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), crypto.PubkeyToAddress(*pub))
}

func TestSignOrderSensitiveToFields(t *testing.T) {
	s, err := NewSigner(randomKeyHex(t), 137)
	require.NoError(t, err)

	a := sampleOrder(s.Address())
	b := sampleOrder(s.Address())
	b.TakerAmount = big.NewInt(500_001)

	sigA, err := s.SignOrder(a)
	require.NoError(t, err)
	sigB, err := s.SignOrder(b)
	require.NoError(t, err)
	assert.NotEqual(t, sigA, sigB)
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner("", 137)
	assert.Error(t, err)
	_, err = NewSigner("zznothex", 137)
	assert.Error(t, err)
}

func TestStaticSignerCannotSign(t *testing.T) {
	s, err := NewStaticSigner("0x56687bf447db6ffa42ffe2204a05edaa20f55839", 137)
	require.NoError(t, err)
	_, err = s.SignTypedData(nil, nil, nil, "")
	assert.Error(t, err)
}
