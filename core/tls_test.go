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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCertificate(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Test CA"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	file := path.Join(t.TempDir(), "truststore.pem")
	require.NoError(t, os.WriteFile(file, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	return file
}

func TestNewClientTLSConfig(t *testing.T) {
	t.Run("system roots", func(t *testing.T) {
		config, err := NewClientTLSConfig("")

		require.NoError(t, err)
		assert.Nil(t, config.RootCAs)
		assert.Equal(t, uint16(tls.VersionTLS12), config.MinVersion)
	})
	t.Run("trust store", func(t *testing.T) {
		config, err := NewClientTLSConfig(writeTestCertificate(t))

		require.NoError(t, err)
		assert.NotNil(t, config.RootCAs)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := NewClientTLSConfig(path.Join(t.TempDir(), "missing.pem"))

		assert.ErrorContains(t, err, "unable to read trust store")
	})
	t.Run("not PEM", func(t *testing.T) {
		file := path.Join(t.TempDir(), "invalid.pem")
		require.NoError(t, os.WriteFile(file, []byte("not a certificate"), 0600))

		_, err := NewClientTLSConfig(file)

		assert.EqualError(t, err, "unable to decode PEM encoded data")
	})
}
