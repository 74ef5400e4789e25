// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fiatrates

import (
	"context"
	"net/http"
	"time"

	"github.com/decred/go-socks/socks"
	"github.com/setlife-network/zeus/dex/dexnet"
)

const (
	fiatRequestTimeout = time.Second * 5
	// maxResponseSize limits the size of a rate source response body.
	maxResponseSize = 1 << 22
)

// newHTTPClient returns a client that dials through the SOCKS5 proxy, or nil
// for the default client if proxy is empty.
func newHTTPClient(proxy string) *http.Client {
	if proxy == "" {
		return nil
	}
	p := &socks.Proxy{Addr: proxy}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         p.DialContext,
			TLSHandshakeTimeout: fiatRequestTimeout,
		},
	}
}

// getRates issues a GET request to url and JSON-decodes the response body into
// thing.
func getRates(ctx context.Context, client *http.Client, url string, thing any) error {
	ctx, cancel := context.WithTimeout(ctx, fiatRequestTimeout)
	defer cancel()
	return dexnet.Get(ctx, url, thing,
		dexnet.WithClient(client),
		dexnet.WithRequestHeader("Accept", "application/json"),
		dexnet.WithSizeLimit(maxResponseSize))
}
