package helpers

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient builds the client behind the developer profile search index
// (search.ProfileIndex). Blank addresses are dropped; basic auth is optional.
// Profile writes are mirrored best-effort, so retries stay short.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	nodes := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			nodes = append(nodes, a)
		}
	}
	if len(nodes) == 0 {
		return nil, errors.New("elasticsearch: no addresses")
	}
	cfg := elasticsearch.Config{
		Addresses:  nodes,
		Username:   username,
		Password:   password,
		MaxRetries: 1,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}
