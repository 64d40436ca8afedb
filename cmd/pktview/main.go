// Command pktview decodes, edits and dumps IPv4 headers using zero-copy header views.
//
//	pktview decode 45000073000040004011b861c0a80001c0a800c7
//	pktview edit --ttl 1 --fix-checksum 45000073000040004011b861c0a80001c0a800c7
//	pktview dump --limit 10 capture.pcap
//	pktview layout udp
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
