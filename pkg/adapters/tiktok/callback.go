package tiktok

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

type callbackResult struct {
	code string
	err  error
}

// AwaitCallback serves a single OAuth redirect on listener and returns the
// authorization code. It gives up with ErrCallbackTimeout after timeout.
func AwaitCallback(ctx context.Context, listener net.Listener, session AuthSession, timeout time.Duration) (string, error) {
	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error_description"))
		case q.Get("state") != session.State:
			res.err = domain.ErrStateMismatch
		case q.Get("code") == "":
			res.err = errors.New("no authorization code received")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Login complete. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(listener) //nolint:errcheck
	defer srv.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.ErrCallbackTimeout
		}
		return "", ctx.Err()
	}
}

// LoopbackRedirect returns the redirect URL for a listener bound on localhost.
func LoopbackRedirect(listener net.Listener) string {
	return "http://" + listener.Addr().String() + "/callback"
}
