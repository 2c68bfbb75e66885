package amazonfps

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	signatureMethod  = "HmacSHA256"
	signatureVersion = "2"
)

// Signer computes signature version 2 for provider requests: HMAC-SHA256 over the http verb,
// host, path and the canonical query string.
type Signer struct {
	secretKey string
}

func NewSigner(secretKey string) Signer {
	return Signer{
		secretKey: secretKey,
	}
}

// Sign returns the signature for params. The caller puts the signature method and version in
// params, using the parameter names of the endpoint at hand.
func (s Signer) Sign(method string, endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("error parsing endpoint %s: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %s has no host", endpoint)
	}

	mac := hmac.New(sha256.New, []byte(s.secretKey))
	mac.Write([]byte(stringToSign(method, u, params)))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func stringToSign(method string, u *url.URL, params url.Values) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return strings.ToUpper(method) + "\n" + strings.ToLower(u.Host) + "\n" + path + "\n" + canonicalQuery(params)
}

// canonicalQuery sorts the parameters by byte order and percent-encodes them per RFC 3986.
// The signature itself is never part of it.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if strings.EqualFold(key, "signature") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := []string{}
	for _, key := range keys {
		values := append([]string{}, params[key]...)
		sort.Strings(values)
		for _, value := range values {
			pairs = append(pairs, rfc3986Escape(key)+"="+rfc3986Escape(value))
		}
	}
	return strings.Join(pairs, "&")
}

func rfc3986Escape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
