package service

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/GoPolymarket/polycopy/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

// usdcDecimals converts USDC base units to dollars.
var usdcDecimals = decimal.New(1, 6)

// ChainService reads Polygon state: the USDC balance backing orders and the
// bytecode check that distinguishes a Safe proxy wallet from a plain EOA.
type ChainService struct {
	rpcURL string
	usdc   common.Address

	mu     sync.Mutex
	client *ethclient.Client
	abi    abi.ABI
}

func NewChainService(rpcURL, usdcContract string) (*ChainService, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, "parsing erc20 abi", err)
	}
	return &ChainService{
		rpcURL: strings.TrimSpace(rpcURL),
		usdc:   common.HexToAddress(usdcContract),
		abi:    parsed,
	}, nil
}

func (s *ChainService) getClient(ctx context.Context) (*ethclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	client, err := ethclient.DialContext(ctx, s.rpcURL)
	if err != nil {
		return nil, apperrors.NewUpstream("connecting to rpc", err)
	}
	s.client = client
	return s.client, nil
}

// USDCBalance returns the wallet's USDC balance in dollars.
func (s *ChainService) USDCBalance(ctx context.Context, wallet string) (decimal.Decimal, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	data, err := s.abi.Pack("balanceOf", common.HexToAddress(wallet))
	if err != nil {
		return decimal.Zero, apperrors.New(apperrors.ErrInternal, "packing balanceOf call", err)
	}

	output, err := client.CallContract(ctx, ethereum.CallMsg{To: &s.usdc, Data: data}, nil)
	if err != nil {
		return decimal.Zero, apperrors.NewUpstream("balanceOf call failed", err)
	}

	raw := new(big.Int).SetBytes(output)
	return decimal.NewFromBigInt(raw, 0).Div(usdcDecimals), nil
}

// IsContract reports whether the address has deployed bytecode. Safe-based
// proxy wallets do, EOAs do not.
func (s *ChainService) IsContract(ctx context.Context, addr string) (bool, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return false, err
	}
	code, err := client.CodeAt(ctx, common.HexToAddress(addr), nil)
	if err != nil {
		return false, apperrors.NewUpstream("code lookup failed", err)
	}
	return len(code) > 0, nil
}

// Close releases the underlying rpc connection.
func (s *ChainService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}
