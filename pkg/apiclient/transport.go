package apiclient

import (
	"net/http"

	"github.com/edulane/edulane-go/pkg/logging"
	"github.com/edulane/edulane-go/pkg/session"
)

// authTransport is the interceptor chain around every outbound request.
//
// Request stage: the current credential is read from the session at
// send time and attached as a bearer header, so a request's
// authorization reflects the session when it is sent, not when the
// call site was built. Requests that already carry an Authorization
// header (the profile fetch inside the login exchange) pass unmodified.
//
// Response stage: a 401 from any endpoint other than the token
// endpoint means a previously valid session was rejected by the
// server; the transport dispatches Logout and hands the response back
// untouched. The token endpoint is excluded because a failed login
// legitimately answers 401 and must not be read as a lost session.
// Redirection is the route guard's concern, never the transport's.
type authTransport struct {
	base      http.RoundTripper
	store     *session.Store
	tokenPath string
	logger    logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" {
		if cred := t.store.Snapshot().Credential; cred != "" {
			// Clone before mutating, per the RoundTripper contract.
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+cred)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		// Transport failures are not authorization failures; they
		// propagate unchanged to the caller.
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && req.URL.Path != t.tokenPath {
		t.logger.Warn("credential rejected by server, forcing logout", "path", req.URL.Path)
		t.store.Logout()
	}

	return resp, nil
}
