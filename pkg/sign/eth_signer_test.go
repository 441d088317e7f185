package sign_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenwencheng/jsonrpc/pkg/sign"
)

const testPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestEthereumSigner(t *testing.T) {
	t.Parallel()

	signer, err := sign.NewEthereumSigner(testPrivateKey, "")
	require.NoError(t, err)
	assert.Equal(t, signer.Address().Hex(), signer.AppKey())

	data, err := sign.NewPayload(signer, []byte(`[2,3]`), fixedTime, "n1").Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"app_secret":""`)

	sig, err := signer.Sign(data)
	require.NoError(t, err)
	require.Equal(t, sign.TypeEthereum, sig.Type())
	assert.GreaterOrEqual(t, sig[64], byte(27))

	addr, err := sign.RecoverAddress(data, sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), addr)

	if other, err := sign.RecoverAddress([]byte("tampered"), sig); err == nil {
		assert.NotEqual(t, signer.Address(), other)
	}
}

func TestEthereumSigner_Errors(t *testing.T) {
	t.Parallel()

	_, err := sign.NewEthereumSigner("zz", "")
	assert.Error(t, err)

	signer, err := sign.NewEthereumSigner(testPrivateKey, "my-app")
	require.NoError(t, err)
	assert.Equal(t, "my-app", signer.AppKey())

	_, err = sign.RecoverAddress([]byte("data"), make(sign.Signature, 32))
	assert.Error(t, err)
}
