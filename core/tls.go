/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package core

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

func parseCertificates(data []byte) (certificates []*x509.Certificate, _ error) {
	for len(data) > 0 {
		var block *pem.Block

		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("unable to decode PEM encoded data")
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		certificate, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("unable to parse certificate: %w", err)
		}

		certificates = append(certificates, certificate)
	}

	return
}

// LoadTrustStore creates a x509 certificate pool from a PEM file, to trust issuers and verifiers
// that use certificates from a private CA (e.g. in test environments).
func LoadTrustStore(trustStoreFile string) (*x509.CertPool, error) {
	data, err := os.ReadFile(trustStoreFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read trust store (file=%s): %w", trustStoreFile, err)
	}
	certificates, err := parseCertificates(data)
	if err != nil {
		return nil, err
	}
	if len(certificates) == 0 {
		return nil, fmt.Errorf("trust store contains no certificates (file=%s)", trustStoreFile)
	}
	certPool := x509.NewCertPool()
	for _, certificate := range certificates {
		certPool.AddCert(certificate)
	}
	return certPool, nil
}

// NewClientTLSConfig creates the TLS config for outbound calls. If no trust store file is given, the system roots are used.
func NewClientTLSConfig(trustStoreFile string) (*tls.Config, error) {
	result := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if trustStoreFile == "" {
		return result, nil
	}
	certPool, err := LoadTrustStore(trustStoreFile)
	if err != nil {
		return nil, err
	}
	result.RootCAs = certPool
	return result, nil
}
