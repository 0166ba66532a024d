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

package credential

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/nuts-foundation/nuts-wallet/storage"
)

const previewTemplate = `{{{types}}} ({{{status}}}, {{{format}}})
Key: {{{key}}}
{{#issuer}}Issuer: {{{issuer}}}
{{/issuer}}{{#validFrom}}Valid from: {{{validFrom}}}
{{/validFrom}}{{#validUntil}}Valid until: {{{validUntil}}}
{{/validUntil}}{{#claims}}  {{{name}}}: {{{value}}}
{{/claims}}`

var previewTmpl *mustache.Template

func init() {
	var err error
	if previewTmpl, err = mustache.ParseString(previewTemplate); err != nil {
		panic(err)
	}
}

// claim is a map so the template can refer to its name and value
type claim map[string]string

// Preview renders a short text representation of a stored credential, listing its types and subject claims.
func Preview(record storage.CredentialRecord) (string, error) {
	view := map[string]interface{}{
		"types":      strings.Join(Types(record.Decoded), ", "),
		"status":     record.Status,
		"format":     record.Type,
		"key":        record.Hash,
		"issuer":     issuerOf(record.Decoded),
		"validFrom":  firstString(record.Decoded, "validFrom", "issuanceDate"),
		"validUntil": firstString(record.Decoded, "validUntil", "expirationDate"),
		"claims":     subjectClaims(record.Decoded),
	}
	return previewTmpl.Render(view)
}

// Types returns the type array of a decoded credential. A single string type is returned as one-element slice.
func Types(decoded map[string]interface{}) []string {
	switch t := decoded["type"].(type) {
	case string:
		return []string{t}
	case []interface{}:
		result := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

func issuerOf(decoded map[string]interface{}) string {
	switch issuer := decoded["issuer"].(type) {
	case string:
		return issuer
	case map[string]interface{}:
		if id, ok := issuer["id"].(string); ok {
			return id
		}
	}
	return ""
}

func firstString(decoded map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := decoded[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// subjectClaims flattens the credential subject into dotted claim names, sorted by name.
func subjectClaims(decoded map[string]interface{}) []claim {
	subject, ok := decoded["credentialSubject"].(map[string]interface{})
	if !ok {
		return nil
	}
	var result []claim
	flatten("", subject, &result)
	sort.Slice(result, func(i, j int) bool {
		return result[i]["name"] < result[j]["name"]
	})
	return result
}

func flatten(prefix string, value interface{}, result *[]claim) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			flatten(name, child, result)
		}
	case []interface{}:
		for i, child := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), child, result)
		}
	case nil:
	default:
		*result = append(*result, claim{"name": prefix, "value": fmt.Sprint(v)})
	}
}
