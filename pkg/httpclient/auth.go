package httpclient

import "net/http"

// TokenSource supplies the current credential artifact, if one is held.
// session.Store implements it.
type TokenSource interface {
	Token() (string, bool)
}

// BearerAuth returns a middleware that attaches the current session token as
// an Authorization: Bearer header. Requests sent while logged out go out
// without the header, letting the backend answer 401 for protected routes.
func BearerAuth(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			token, ok := src.Token()
			if !ok {
				return next.RoundTrip(r)
			}
			// RoundTrippers must not mutate the caller's request.
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}
