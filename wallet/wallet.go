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

// Package wallet wires the credential exchange components into the wallet engine and exposes them to the user interface.
package wallet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nuts-foundation/nuts-wallet/auth/openid4vp"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/http/client"
	"github.com/nuts-foundation/nuts-wallet/http/relay"
	"github.com/nuts-foundation/nuts-wallet/storage"
	"github.com/nuts-foundation/nuts-wallet/vcr/credential"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/nuts-foundation/nuts-wallet/vcr/openid4vci"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
	"github.com/nuts-foundation/nuts-wallet/wallet/log"
)

const engineName = "Wallet"

// maxCachedMetadataBytes is the maximum size of a cached metadata document.
const maxCachedMetadataBytes = 1024 * 1024

var _ core.Named = (*Wallet)(nil)
var _ core.Injectable = (*Wallet)(nil)
var _ core.Configurable = (*Wallet)(nil)
var _ core.Routable = (*Wallet)(nil)
var _ core.Diagnosable = (*Wallet)(nil)

// StoreProvider provides the persistent and session stores of the wallet.
type StoreProvider interface {
	Store() storage.Store
	Sessions(prefixes ...string) storage.SessionStore
}

// Wallet is the engine running credential issuance and presentation for the wallet's DID.
type Wallet struct {
	config        Config
	stores        StoreProvider
	store         storage.Store
	presentations storage.SessionStore
	keys          didkey.KeyManager
	issuance      *holder.Issuance
	presenter     *openid4vp.Presenter
	gate          *credential.Gate
	metadataCache *client.CachingRoundTripper
	relayHandler  *relay.Handler
}

// IssuanceResult is the outcome of an issuance flow.
type IssuanceResult struct {
	// TxCodeRequired is set when the issuer requires a transaction code (PIN), which wasn't given.
	// No credential has been requested yet: the flow must be started again with the transaction code.
	TxCodeRequired bool                      `json:"tx_code_required"`
	Issuer         string                    `json:"issuer,omitempty"`
	Credential     *storage.CredentialRecord `json:"credential,omitempty"`
	Preview        string                    `json:"preview,omitempty"`
}

// New creates the wallet engine, which uses the stores of the given provider.
func New(stores StoreProvider) *Wallet {
	return &Wallet{
		config: DefaultConfig(),
		stores: stores,
	}
}

func (w *Wallet) Name() string {
	return engineName
}

func (w *Wallet) ConfigKey() string {
	return "wallet"
}

func (w *Wallet) Config() interface{} {
	return &w.config
}

// Configure creates the HTTP clients and the exchange components. The store provider must be configured first.
func (w *Wallet) Configure(config core.WalletConfig) error {
	if w.config.RecentDays <= 0 {
		return fmt.Errorf("wallet.recentdays must be positive")
	}
	tlsConfig, err := core.NewClientTLSConfig(config.HTTP.TrustStoreFile)
	if err != nil {
		return err
	}
	var protocolClient core.HTTPRequestDoer = core.NewStrictHTTPClient(config.Strictmode, config.HTTP.ClientTimeout, tlsConfig).
		WithoutRedirects()
	var metadataClient core.HTTPRequestDoer = core.NewStrictHTTPClient(config.Strictmode, config.HTTP.ClientTimeout, tlsConfig).
		WrapTransport(func(next http.RoundTripper) http.RoundTripper {
			w.metadataCache = client.NewCachingTransport(next, maxCachedMetadataBytes)
			return w.metadataCache
		})
	if config.Relay.Serve {
		w.relayHandler = relay.NewHandler(protocolClient, config.Relay.RateLimit, config.Relay.Burst)
	}
	if config.Relay.URL != "" {
		log.Logger().
			WithField(core.LogFieldRelayTarget, config.Relay.URL).
			Info("Sending protocol calls through relay")
		protocolClient = relay.NewClient(config.Relay.URL, protocolClient)
		metadataClient = relay.NewClient(config.Relay.URL, metadataClient)
	}

	w.store = w.stores.Store()
	w.presentations = w.stores.Sessions("wallet", "presentation")
	w.keys = didkey.NewManager(w.store)
	fetcher := openid4vci.NewFetcher(metadataClient)
	w.issuance = holder.NewIssuance(fetcher, openid4vci.NewIssuerClient(protocolClient), w.keys, holder.Config{
		RedirectURI:      w.config.RedirectURI,
		DeferredAttempts: w.config.Deferred.Attempts,
		DeferredInterval: w.config.Deferred.Interval,
	})
	w.presenter = openid4vp.NewPresenter(openid4vci.NewFetcher(protocolClient), w.store, w.keys, w.stores.Sessions("wallet", "nonce"), protocolClient, openid4vp.Config{
		RecentDays:           w.config.RecentDays,
		ResponseURIAllowList: w.config.ResponseURIAllowList,
	})
	w.gate = credential.NewGate(w.store, w.keys, protocolClient)
	return registerMetrics()
}

// Diagnostics returns the wallet DID, the number of stored credentials and the number of cached metadata documents.
func (w *Wallet) Diagnostics() []core.DiagnosticResult {
	ctx := context.Background()
	var results []core.DiagnosticResult
	if record, err := w.store.FirstDID(ctx); err == nil && record != nil {
		results = append(results, &core.GenericDiagnosticResult{Title: "did", Outcome: record.DID})
	}
	if credentials, err := w.store.Recent(ctx, w.config.RecentDays); err == nil {
		results = append(results, &core.GenericDiagnosticResult{Title: "credentials_count", Outcome: len(credentials)})
	}
	if w.metadataCache != nil {
		results = append(results, &core.GenericDiagnosticResult{Title: "metadata_cache_entries", Outcome: w.metadataCache.Len()})
	}
	return results
}

// DID returns the wallet's DID, creating it on first use.
func (w *Wallet) DID(ctx context.Context) (string, error) {
	keyPair, err := w.keys.GetOrCreate(ctx)
	if err != nil {
		return "", err
	}
	return keyPair.DID.String(), nil
}

// Issue runs the issuance flow for the scanned URL and stores the received credential.
// If the issuer requires a transaction code and txCode is empty, the result only indicates it is required.
func (w *Wallet) Issue(ctx context.Context, qrURL string, txCode string) (*IssuanceResult, error) {
	result, err := w.issue(ctx, qrURL, txCode)
	if result == nil || !result.TxCodeRequired {
		issuanceCounter.WithLabelValues(resultLabel(err)).Inc()
	}
	if err != nil {
		w.activity(ctx, "error", "Credential issuance failed: "+err.Error())
		return nil, err
	}
	if result.Credential != nil {
		w.activity(ctx, "info", "Stored credential "+result.Credential.Hash)
	}
	return result, nil
}

func (w *Wallet) issue(ctx context.Context, qrURL string, txCode string) (*IssuanceResult, error) {
	flow, err := w.issuance.Prepare(ctx, qrURL)
	if err != nil {
		return nil, err
	}
	result := &IssuanceResult{}
	if flow.Offer != nil {
		result.Issuer = flow.Offer.CredentialIssuer
	}
	if flow.RequiresTxCode && txCode == "" {
		result.TxCodeRequired = true
		return result, nil
	}
	received, err := w.issuance.Complete(ctx, flow, txCode)
	if err != nil {
		return nil, err
	}
	switch {
	case received.Status != credential.Offered:
		result.Credential, err = w.gate.Store(ctx, *received, false)
	case received.Format == credential.JWTVC && received.ID != "":
		result.Credential, err = w.gate.SendDID(ctx, *received, flow.Source)
	default:
		result.Credential, err = w.gate.Accept(ctx, *received, flow.Source)
	}
	if err != nil {
		return nil, err
	}
	result.Preview, err = credential.Preview(*result.Credential)
	if err != nil {
		log.Logger().WithError(err).Warn("Unable to render credential preview")
	}
	return result, nil
}

// Credentials returns the credentials stored in the recent days, newest first.
func (w *Wallet) Credentials(ctx context.Context) ([]storage.CredentialRecord, error) {
	return w.store.Recent(ctx, w.config.RecentDays)
}

// Credential returns the stored credential with the given key.
func (w *Wallet) Credential(ctx context.Context, key string) (*storage.CredentialRecord, error) {
	return w.store.Get(ctx, key)
}

// DeleteCredential removes the stored credential with the given key.
func (w *Wallet) DeleteCredential(ctx context.Context, key string) error {
	if err := w.store.Delete(ctx, key); err != nil {
		return err
	}
	w.activity(ctx, "info", "Deleted credential "+key)
	return nil
}

// DeleteAllCredentials removes all stored credentials.
func (w *Wallet) DeleteAllCredentials(ctx context.Context) error {
	if err := w.store.DeleteAll(ctx); err != nil {
		return err
	}
	w.activity(ctx, "info", "Deleted all credentials")
	return nil
}

// StartPresentation resolves the authorization request in the scanned URL.
// The request is retained in the session store under the returned ID, until it's submitted or expires.
func (w *Wallet) StartPresentation(ctx context.Context, requestURL string) (string, *openid4vp.PresentationRequest, error) {
	request, err := w.presenter.Start(ctx, requestURL)
	if err != nil {
		presentationCounter.WithLabelValues(resultLabel(err)).Inc()
		w.activity(ctx, "error", "Presentation request failed: "+err.Error())
		return "", nil, err
	}
	if request.NoMatch() {
		presentationCounter.WithLabelValues("no_match").Inc()
		w.activity(ctx, "info", request.NoMatchMessage())
		return "", request, nil
	}
	id := uuid.NewString()
	if err := w.presentations.Put(ctx, id, request); err != nil {
		return "", nil, err
	}
	return id, request, nil
}

// SubmitPresentation presents the candidate credential with the given key to the verifier of the started presentation.
func (w *Wallet) SubmitPresentation(ctx context.Context, requestID string, key string) (*openid4vp.SubmissionResult, error) {
	result, err := w.submitPresentation(ctx, requestID, key)
	presentationCounter.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		w.activity(ctx, "error", "Presentation failed: "+err.Error())
		return nil, err
	}
	w.activity(ctx, "info", "Presented credential "+key)
	return result, nil
}

func (w *Wallet) submitPresentation(ctx context.Context, requestID string, key string) (*openid4vp.SubmissionResult, error) {
	var request openid4vp.PresentationRequest
	if err := w.presentations.Get(ctx, requestID, &request); err != nil {
		return nil, fmt.Errorf("unknown or expired presentation request: %w", err)
	}
	candidate, ok := request.Candidate(key)
	if !ok {
		return nil, core.Errorf(core.ErrMalformedInput, "credential %s does not match the presentation request", key)
	}
	result, err := w.presenter.Submit(ctx, request, candidate)
	if err != nil {
		return nil, err
	}
	_ = w.presentations.Delete(ctx, requestID)
	return result, nil
}

// Logs returns the activity log.
func (w *Wallet) Logs(ctx context.Context) ([]storage.LogEntry, error) {
	return w.store.ListLogs(ctx)
}

// activity appends an entry to the activity log shown to the user.
func (w *Wallet) activity(ctx context.Context, level string, message string) {
	err := w.store.AppendLog(ctx, storage.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	if err != nil {
		log.Logger().WithError(err).Warn("Unable to write activity log")
	}
}
