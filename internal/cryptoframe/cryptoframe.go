/*******************************************************************************
*
* Copyright 2024 Holo contributors
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

// Package cryptoframe implements the authenticated-encryption framing used
// by the .intunewin container: AES-256-CBC with PKCS#7 padding, wrapped in
// an HMAC-SHA256 authentication tag, in the exact layout Microsoft's own
// packaging tool produces.
package cryptoframe

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"io"

	"github.com/holocm/holo-pkg/internal/berror"
)

const (
	keySize  = 32
	ivSize   = 16
	macSize  = 32
	minFramed = macSize + ivSize + aes.BlockSize

	// ProfileIdentifier is the fixed profile name the reference tool
	// stamps into every Detection.xml it writes.
	ProfileIdentifier = "ProfileVersion1"
	// FileDigestAlgorithm is the fixed digest algorithm name the
	// reference tool stamps into every Detection.xml it writes.
	FileDigestAlgorithm = "SHA256"
)

// Info carries the per-build secret material generated by Encrypt. It is
// re-hydrated from Detection.xml during Unpack, so Decrypt only needs the
// EncryptionKey and MacKey fields to be populated from the wire.
type Info struct {
	EncryptionKey []byte
	MacKey        []byte
	IV            []byte
	Mac           []byte
	FileDigest    []byte
}

// Encrypt frames plaintext as HMAC(32) || IV(16) || AES-256-CBC(PKCS7)(plaintext),
// generating fresh random key material for this call. The returned Info's
// FileDigest is SHA-256 of the plaintext (not the ciphertext), matching the
// reference tool's own FileDigest semantics.
func Encrypt(plaintext []byte) ([]byte, *Info, error) {
	info := &Info{
		EncryptionKey: make([]byte, keySize),
		MacKey:        make([]byte, keySize),
		IV:            make([]byte, ivSize),
	}
	for _, buf := range [][]byte{info.EncryptionKey, info.MacKey, info.IV} {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return nil, nil, berror.Internal(err)
		}
	}

	ciphertext, err := aesEncrypt(plaintext, info.EncryptionKey, info.IV)
	if err != nil {
		return nil, nil, err
	}

	hmacInput := make([]byte, 0, len(info.IV)+len(ciphertext))
	hmacInput = append(hmacInput, info.IV...)
	hmacInput = append(hmacInput, ciphertext...)
	info.Mac = computeHMAC(info.MacKey, hmacInput)

	framed := make([]byte, 0, macSize+ivSize+len(ciphertext))
	framed = append(framed, info.Mac...)
	framed = append(framed, info.IV...)
	framed = append(framed, ciphertext...)

	digest := sha256.Sum256(plaintext)
	info.FileDigest = digest[:]

	return framed, info, nil
}

// Decrypt reverses Encrypt: it verifies the HMAC over IV||ciphertext in
// constant time, then AES-CBC-decrypts and strips PKCS#7 padding. info must
// carry EncryptionKey and MacKey; Mac, IV and FileDigest are ignored on
// input.
func Decrypt(framed []byte, info *Info) ([]byte, error) {
	if len(framed) < minFramed {
		return nil, berror.ErrDecryption("framed blob too short")
	}

	storedMAC := framed[0:macSize]
	iv := framed[macSize : macSize+ivSize]
	ciphertext := framed[macSize+ivSize:]

	hmacInput := make([]byte, 0, len(iv)+len(ciphertext))
	hmacInput = append(hmacInput, iv...)
	hmacInput = append(hmacInput, ciphertext...)
	computedMAC := computeHMAC(info.MacKey, hmacInput)

	if subtle.ConstantTimeCompare(computedMAC, storedMAC) != 1 {
		return nil, berror.ErrHMACVerificationFailed()
	}

	return aesDecrypt(ciphertext, info.EncryptionKey, iv)
}

func aesEncrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, berror.Internal(err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

func aesDecrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, berror.ErrDecryption("ciphertext length is not a multiple of the block size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, berror.Internal(err)
	}

	padded := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, berror.ErrInvalidPadding()
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > n {
		return nil, berror.ErrInvalidPadding()
	}
	if !bytes.Equal(data[n-padLen:], bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, berror.ErrInvalidPadding()
	}
	return data[:n-padLen], nil
}

func computeHMAC(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
