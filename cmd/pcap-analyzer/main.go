package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"PcapDigest/internal/engine"
	"PcapDigest/pkg/pcap"
)

func main() {
	maxPackets := flag.Int("max-packets", 0, "Maximum packets to decode (0 = unlimited)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pcap-analyzer [-max-packets N] <path_to_pcap_file>")
		os.Exit(1)
	}
	pcapFilePath := flag.Arg(0)

	f, err := os.Open(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to open capture file: %v", err)
	}
	defer f.Close()

	log.Printf("Decoding packets from '%s'...", pcapFilePath)
	packets, err := pcap.NewDecoder(*maxPackets).Decode(f)
	if err != nil {
		log.Fatalf("Failed to decode capture: %v", err)
	}
	log.Printf("Decoded %d packets.", len(packets))

	rpt := engine.Analyze(packets)

	out, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal report: %v", err)
	}
	fmt.Println(string(out))
}
