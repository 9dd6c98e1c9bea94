// internal/server/https.go
package server

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"

	"golang.org/x/crypto/acme/autocert"

	"github.com/viberx/viberx/internal/log"
)

// ValidateDomain checks that the domain can get a Let's Encrypt
// certificate: a real public hostname, not localhost or an IP.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain required for HTTPS")
	}
	if strings.EqualFold(domain, "localhost") {
		return fmt.Errorf("Let's Encrypt requires a public domain, not localhost")
	}
	if ip := net.ParseIP(strings.Trim(domain, "[]")); ip != nil {
		return fmt.Errorf("Let's Encrypt requires a domain name, not an IP address")
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || strings.Contains(domain, "..") {
		return fmt.Errorf("invalid domain format: %s", domain)
	}
	return nil
}

// ListenAndServeTLS serves HTTPS on :443 with automatic certificates and
// redirects plain HTTP on :80.
func (s *Server) ListenAndServeTLS(domain, certDir string) error {
	if err := ValidateDomain(domain); err != nil {
		return err
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
		Cache:      autocert.DirCache(certDir),
	}

	s.httpsServer = &http.Server{
		Addr:    ":443",
		Handler: s.router,
		TLSConfig: &tls.Config{
			GetCertificate: manager.GetCertificate,
			NextProtos:     []string{"h2", "http/1.1"},
		},
	}

	// Port 80 answers ACME challenges and redirects everything else
	s.httpRedirect = &http.Server{
		Addr: ":80",
		Handler: manager.HTTPHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target := "https://" + domain + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})),
	}

	go func() {
		if err := s.httpRedirect.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http redirect server failed", "error", err.Error())
		}
	}()

	if err := s.httpsServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
