package gpwebpay

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// ParsePrivateKey decodes a base64-wrapped PEM merchant private key.
func ParsePrivateKey(keyBase64 string) (*rsa.PrivateKey, error) {
	block, err := decodePemBlock(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("ParsePrivateKey: %w", err)
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("ParsePrivateKey: not an RSA key")
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ParsePrivateKey: %w", err)
	}
	return key, nil
}

// ParsePublicKey decodes a base64-wrapped PEM gateway public key. The
// gateway distributes either a bare public key or a certificate.
func ParsePublicKey(keyBase64 string) (*rsa.PublicKey, error) {
	block, err := decodePemBlock(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("ParsePublicKey: %w", err)
	}
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("ParsePublicKey: not an RSA key")
		}
		return rsaKey, nil
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ParsePublicKey: %w", err)
	}
	rsaKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ParsePublicKey: certificate does not hold an RSA key")
	}
	return rsaKey, nil
}

func decodePemBlock(keyBase64 string) (*pem.Block, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("can't decode base64: %w", err)
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	return block, nil
}
