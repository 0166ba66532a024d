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

package holder

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/vcr/log"
	"github.com/nuts-foundation/nuts-wallet/vcr/openid4vci"
)

var errIssuancePending = errors.New("credential issuance is pending")

// pollDeferred polls the deferred credential endpoint at a fixed interval, until the issuer returns the credential
// or the configured number of attempts is exhausted. The first poll is done after one interval.
func (i *Issuance) pollDeferred(ctx context.Context, endpoint string, acceptanceToken string) (*openid4vci.CredentialResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(i.config.DeferredInterval):
	}
	// zero attempts would make retry-go retry forever
	attempts := max(i.config.DeferredAttempts, 1)
	var result *openid4vci.CredentialResponse
	err := retry.Do(func() error {
		response, err := i.client.RequestDeferredCredential(ctx, endpoint, acceptanceToken)
		if err != nil {
			var oauthErr openid4vci.Error
			if errors.As(err, &oauthErr) && oauthErr.Code == openid4vci.IssuancePending {
				return errIssuancePending
			}
			return retry.Unrecoverable(err)
		}
		if response.HasCredential() {
			result = response
			return nil
		}
		if response.AcceptanceToken != "" {
			acceptanceToken = response.AcceptanceToken
		}
		return errIssuancePending
	},
		retry.Attempts(attempts),
		retry.Delay(i.config.DeferredInterval),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, _ error) {
			log.Logger().
				WithField(core.LogFieldFlowState, DeferredPending).
				Debugf("Deferred credential not yet available (attempt %d of %d)", n+1, attempts)
		}),
	)
	if errors.Is(err, errIssuancePending) {
		return nil, core.Errorf(core.ErrTimeout, "No credential after all retries")
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
