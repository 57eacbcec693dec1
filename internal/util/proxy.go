package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc returns a transport proxy selector. Explicit values override
// the corresponding HTTP_PROXY, HTTPS_PROXY and NO_PROXY variables; unset
// ones fall back to the environment. Hosts matched by noProxy, including
// localhost, are always dialled directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" {
		cfg.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		cfg.NoProxy = noProxy
	}

	selectProxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return selectProxy(req.URL)
	}
}
