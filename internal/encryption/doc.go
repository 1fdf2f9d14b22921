// Package encryption implements box (encrypt and tag) and unbox (authenticate
// and decrypt) for single files.
//
// A password-derived secret keys an XChaCha20 keystream and a BLAKE2b MAC. The
// body is processed in fixed-size chunks on a bounded worker pool; the MAC is fed
// in chunk order, so neither ciphertext nor tag depend on the thread count or the
// chunk size. Unbox authenticates the whole body before it produces any plaintext
// and only renames the decrypted output into place after a second verification.
package encryption
