// Package sign authenticates JSON-RPC calls.
//
// Every send carries four headers: app_key, time, rand_number and sign. The
// signature covers a canonical JSON payload
//
//	{"app_key":..., "app_secret":..., "time":"17296", "rand_number":..., "params":...}
//
// where time holds only the first five digits of the unix-seconds timestamp.
// HMACSigner computes HMAC-SHA256 keyed by app key + app secret;
// EthereumSigner signs the Keccak256 hash with a secp256k1 key instead.
// Signatures travel base64 encoded.
package sign
