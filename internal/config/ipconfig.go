// Package config loads the mandatory ip.config address book and the
// optional sequencer.toml settings file sitting next to it.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// IPConfig is the parsed form of ip.config: its first line gives the
// expected node count and payload size, and every following line is one
// node's "host:port" address, in index order.
type IPConfig struct {
	NumNodes    int
	PayloadSize int
	Addresses   []string
}

// LoadIPConfig reads and parses the ip.config file at path.
func LoadIPConfig(path string) (*IPConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, xerrors.Errorf("config: %s is empty", path)
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != 2 {
		return nil, xerrors.Errorf("config: first line of %s must be \"<num_nodes> <payload_size>\"", path)
	}
	numNodes, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, xerrors.Errorf("config: invalid num_nodes: %w", err)
	}
	payloadSize, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, xerrors.Errorf("config: invalid payload_size: %w", err)
	}

	var addrs []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		addrs = append(addrs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("config: read %s: %w", path, err)
	}
	if len(addrs) != numNodes {
		return nil, xerrors.Errorf("config: %s declares %d nodes but lists %d addresses", path, numNodes, len(addrs))
	}

	return &IPConfig{NumNodes: numNodes, PayloadSize: payloadSize, Addresses: addrs}, nil
}
