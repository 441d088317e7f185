package sign

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var _ Signer = (*EthereumSigner)(nil)

// EthereumSigner signs the Keccak256 hash of the payload with a secp256k1
// key. The application key is the checksummed address unless one is given.
type EthereumSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	appKey     string
}

// NewEthereumSigner parses a hex private key, with or without 0x.
// An empty appKey defaults to the signer address.
func NewEthereumSigner(privateKeyHex, appKey string) (*EthereumSigner, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse ethereum private key: %w", err)
	}

	addr := ethcrypto.PubkeyToAddress(key.PublicKey)
	if appKey == "" {
		appKey = addr.Hex()
	}
	return &EthereumSigner{privateKey: key, address: addr, appKey: appKey}, nil
}

func (s *EthereumSigner) AppKey() string { return s.appKey }

func (s *EthereumSigner) Address() common.Address { return s.address }

func (s *EthereumSigner) Sign(data []byte) (Signature, error) {
	sig, err := ethcrypto.Sign(ethcrypto.Keccak256(data), s.privateKey)
	if err != nil {
		return nil, err
	}
	// V is 27/28 on the wire.
	if sig[64] < 27 {
		sig[64] += 27
	}
	return Signature(sig), nil
}

// RecoverAddress returns the address that produced sig over data.
func RecoverAddress(data []byte, sig Signature) (common.Address, error) {
	if sig.Type() != TypeEthereum {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	local := make([]byte, len(sig))
	copy(local, sig)
	if local[64] >= 27 {
		local[64] -= 27
	}

	pub, err := ethcrypto.SigToPub(ethcrypto.Keccak256(data), local)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery failed: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
