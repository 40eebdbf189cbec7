package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/polycopy/internal/pkg/apperrors"
	"github.com/GoPolymarket/polycopy/internal/pkg/logger"
	"github.com/GoPolymarket/polycopy/internal/signer"
	"github.com/GoPolymarket/polymarket-go-sdk"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/ethereum/go-ethereum/common"
)

// OrderRequest is one marketable order to place on the CLOB.
type OrderRequest struct {
	TokenID string
	Price   float64
	Size    float64 // shares
	Side    string  // BUY or SELL
}

// OrderService signs and posts CLOB orders for the configured account. A
// single mutex serializes build-sign-post so concurrent events cannot race
// on salts or nonces.
type OrderService struct {
	client        *polymarket.Client
	fastSigner    *signer.Signer
	builderSigner auth.Signer
	apiKey        *auth.APIKey
	maker         common.Address

	mu      sync.Mutex
	useSafe bool
}

func NewOrderService(privateKey, proxyWallet string, apiKey auth.APIKey, timeout time.Duration) (*OrderService, error) {
	pk := strings.TrimPrefix(strings.TrimSpace(privateKey), "0x")
	fastSigner, err := signer.NewSigner(pk, auth.PolygonChainID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrConfig, "initializing order signer", err)
	}
	builderSigner, err := signer.NewStaticSigner(fastSigner.Address().Hex(), auth.PolygonChainID)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: timeout,
	}
	client := polymarket.NewClient(
		polymarket.WithUseServerTime(true),
		polymarket.WithHTTPClient(httpClient),
	).WithAuth(builderSigner, &apiKey)

	return &OrderService{
		client:        client,
		fastSigner:    fastSigner,
		builderSigner: builderSigner,
		apiKey:        &apiKey,
		maker:         common.HexToAddress(proxyWallet),
	}, nil
}

// SignerAddress is the EOA derived from the configured private key.
func (s *OrderService) SignerAddress() common.Address {
	return s.fastSigner.Address()
}

// UseSafeSignature switches order signing to the Gnosis Safe signature type.
// Called once at startup when the proxy wallet turns out to be a contract.
func (s *OrderService) UseSafeSignature() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useSafe = true
}

// Submit builds, signs and posts one fill-and-kill order.
func (s *OrderService) Submit(ctx context.Context, req OrderRequest) (*clobtypes.OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	signable, err := clob.NewOrderBuilder(s.client.CLOB, s.builderSigner).
		TokenID(req.TokenID).
		Price(req.Price).
		Size(req.Size).
		Side(strings.ToUpper(req.Side)).
		OrderType(clobtypes.OrderTypeFAK).
		BuildSignableWithContext(ctx)
	if err != nil {
		return nil, apperrors.NewSubmission("building order", err)
	}

	signable.Order.Maker = s.maker
	if s.useSafe {
		sigType := int(auth.SignatureGnosisSafe)
		signable.Order.SignatureType = &sigType
	}

	signature, err := s.fastSigner.SignOrder(toExchangeOrder(signable.Order))
	if err != nil {
		return nil, apperrors.NewSubmission("signing order", err)
	}

	signed := &clobtypes.SignedOrder{
		Order:     *signable.Order,
		Signature: signature,
		Owner:     s.apiKey.Key,
		OrderType: signable.OrderType,
		PostOnly:  signable.PostOnly,
	}
	resp, err := s.client.CLOB.PostOrder(ctx, signed)
	if err != nil {
		return nil, apperrors.NewSubmission("posting order", err)
	}

	logger.Info("Order posted",
		"token_id", req.TokenID, "side", req.Side,
		"price", req.Price, "size", req.Size)
	return &resp, nil
}

// toExchangeOrder flattens the SDK order into the struct the local signer
// hashes.
func toExchangeOrder(o *clobtypes.Order) *signer.Order {
	side := uint8(0)
	if strings.ToUpper(o.Side) == "SELL" {
		side = 1
	}
	sigType := uint8(0)
	if o.SignatureType != nil {
		sigType = uint8(*o.SignatureType)
	}
	return &signer.Order{
		Salt:          o.Salt.Int,
		Maker:         o.Maker,
		Signer:        o.Signer,
		Taker:         o.Taker,
		TokenID:       o.TokenID.Int,
		MakerAmount:   o.MakerAmount.BigInt(),
		TakerAmount:   o.TakerAmount.BigInt(),
		Expiration:    o.Expiration.Int,
		Nonce:         o.Nonce.Int,
		FeeRateBps:    o.FeeRateBps.BigInt(),
		Side:          side,
		SignatureType: sigType,
	}
}
