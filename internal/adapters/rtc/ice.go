// Package rtc hands out the ICE configuration browsers need to negotiate
// peer connections. Media never passes through the server.
package rtc

import (
	"strings"

	"github.com/dkeye/Huddle/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const defaultSTUN = "stun:stun.l.google.com:19302"

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{{URLs: []string{defaultSTUN}}}
}

// ICEServers converts configured servers to the webrtc representation sent in
// connection-confirmed. An empty list falls back to a public STUN server.
// Entries whose urls carry no stun/turn scheme are skipped.
func ICEServers(servers []config.ICEServer) []webrtc.ICEServer {
	if len(servers) == 0 {
		return DefaultICEServers()
	}
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		urls := make([]string, 0, len(s.URLs))
		for _, u := range s.URLs {
			if validScheme(u) {
				urls = append(urls, u)
				continue
			}
			log.Warn().Str("module", "rtc").Str("url", u).Msg("skipping ice url with unknown scheme")
		}
		if len(urls) == 0 {
			continue
		}
		srv := webrtc.ICEServer{URLs: urls}
		if s.Username != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out
}

func validScheme(u string) bool {
	for _, p := range []string{"stun:", "stuns:", "turn:", "turns:"} {
		if strings.HasPrefix(strings.ToLower(u), p) {
			return true
		}
	}
	return false
}
