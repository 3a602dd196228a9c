// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"fmt"

	"github.com/go-core-stack/spdy2http/pkg/uri"
)

// resolveTarget computes the origin URL for an inbound SPDY request, per
// spec.md §4.1/§4.3's two addressing modes:
//
//   - non-transparent (default): the request-target is itself an absolute
//     URI (as a forward proxy receives), parsed with pkg/uri.
//   - transparent (-t/--transparent): the request-target is an origin-form
//     path and the origin host comes from the SPDY ":host" pseudo-header.
//
// In either mode, a configured backend override (-b/--backend-server)
// replaces whatever host[:port] was resolved, matching the original's
// "if set, the proxy will connect always to it" semantics.
func (e *Engine) resolveTarget(method, path, scheme, host string) (string, error) {
	var targetScheme, targetHost, pathAndMore string

	if e.cfg.Transparent {
		if host == "" {
			return "", &ParseError{Msg: "transparent mode requires a :host pseudo-header"}
		}
		targetScheme = scheme
		if targetScheme == "" {
			targetScheme = "http"
		}
		targetHost = host
		pathAndMore = path
	} else {
		parsed, err := uri.Parse(path)
		if err != nil {
			return "", &ParseError{Msg: "request-target is not a valid URI", Err: err}
		}
		if parsed.Scheme == "" || parsed.HostAndPort == "" {
			return "", &ParseError{Msg: "non-transparent mode requires an absolute request-target"}
		}
		targetScheme = parsed.Scheme
		targetHost = parsed.HostAndPort
		pathAndMore = parsed.PathAndMore
	}

	if e.cfg.Backend != "" {
		targetHost = e.cfg.Backend
	}

	if pathAndMore == "" {
		pathAndMore = "/"
	}

	target := fmt.Sprintf("%s://%s%s", targetScheme, targetHost, pathAndMore)
	if _, err := uri.Parse(target); err != nil {
		return "", &ParseError{Msg: "resolved target URL does not parse", Err: err}
	}

	return target, nil
}
