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

package openid4vci

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/santhosh-tekuri/jsonschema"
)

//go:embed credential-offer-schema.json
var credentialOfferSchemaData []byte

const credentialOfferSchemaURL = "https://nuts.nl/schemas/openid4vci/credential-offer.json"

var credentialOfferSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(credentialOfferSchemaURL, bytes.NewReader(credentialOfferSchemaData)); err != nil {
		panic(err)
	}
	credentialOfferSchema = compiler.MustCompile(credentialOfferSchemaURL)
}

// ParseCredentialOffer validates the given JSON document against the credential offer schema and unmarshals it.
func ParseCredentialOffer(data []byte) (*CredentialOffer, error) {
	if err := credentialOfferSchema.Validate(bytes.NewReader(data)); err != nil {
		return nil, core.Errorf(core.ErrMalformedInput, "invalid credential offer: %w", err)
	}
	var offer CredentialOffer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, core.Errorf(core.ErrMalformedInput, "invalid credential offer: %w", err)
	}
	return &offer, nil
}
