package tls

import (
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"todolist-kv/internal/logging"
)

// HTTPSRedirectHandler redirects every plain HTTP request to the same URL on httpsPort.
// 308 keeps POST form submissions intact across the redirect.
func HTTPSRedirectHandler(httpsPort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if httpsPort != "443" {
			host = net.JoinHostPort(host, httpsPort)
		}
		target := "https://" + host + r.URL.RequestURI()

		logging.Logger.WithFields(logrus.Fields{
			"client_ip": r.RemoteAddr,
			"method":    r.Method,
			"target":    target,
		}).Debug("HTTP to HTTPS redirect")

		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}
