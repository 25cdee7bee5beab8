// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/warthog-network/node/chaincfg"
)

const (
	defaultConfigFilename = "warthognode.conf"
	defaultDataDirname    = "data"
	defaultLogFilename    = "warthognode.log"
	defaultLogLevel       = "info"
)

// config mirrors spec §6.4's recognized option set, using the
// long/short-flag-plus-INI-file idiom dcrd's own config.go uses
// (SPEC_FULL.md §2.3).
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store chain and peer databases"`

	Bind     string `long:"bind" description:"P2P listen address (ip:port)"`
	RPCBind  string `long:"rpcbind" description:"HTTP JSON-RPC listen address (external collaborator)"`

	Connect []string `long:"connect" description:"Pinned outbound peer address; repeatable"`

	EnableBan      bool `long:"enableban" description:"Enable banning of misbehaving peers"`
	AllowLocalhost bool `long:"allowlocalhost" description:"Allow outbound/inbound connections to/from localhost"`

	LeaderPrivateKey string `long:"leaderprivatekey" description:"Hex-encoded secp256k1 private key enabling signed-snapshot finality"`

	Isolated bool `long:"isolated" description:"Suppress all scheduler-driven outbound connects"`
	TestNet  bool `long:"testnet" description:"Use the test network instead of mainnet"`
	RegNet   bool `long:"regnet" description:"Use the isolated regression-test network"`

	StratumBind   string `long:"stratumbind" description:"Stratum mining server listen address (external collaborator)"`
	PublicRPCBind string `long:"publicrpcbind" description:"Public read-only JSON-RPC listen address (external collaborator)"`

	DebugLevel string `long:"debuglevel" description:"Log level for all subsystems: trace, debug, info, warn, error, critical"`

	chainDbPath  string
	peersDbPath  string
	activeParams *chaincfg.Params
}

// loadConfig parses command-line flags, then an INI config file if one
// is present, the same two-pass approach dcrd's loadConfig uses so
// flags can override file settings. Defaults are filled in and derived
// paths (chainDbPath, peersDbPath) are computed from DataDir.
func loadConfig() (*config, []string, error) {
	cfg := config{
		DataDir:    defaultDataDirname,
		DebugLevel: defaultLogLevel,
	}

	preParser := flags.NewParser(&cfg, flags.Default|flags.IgnoreUnknown)
	_, err := preParser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = defaultConfigFilename
	}
	if _, statErr := os.Stat(cfg.ConfigFile); statErr == nil {
		iniParser := flags.NewIniParser(flags.NewParser(&cfg, flags.Default))
		if err := iniParser.ParseFile(cfg.ConfigFile); err != nil {
			return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remaining, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	switch {
	case cfg.TestNet:
		cfg.activeParams = &chaincfg.TestNetParams
	case cfg.RegNet:
		cfg.activeParams = &chaincfg.RegNetParams
	default:
		cfg.activeParams = &chaincfg.MainNetParams
	}

	if cfg.Bind == "" {
		cfg.Bind = ":" + cfg.activeParams.DefaultPort
	}

	cfg.chainDbPath = filepath.Join(cfg.DataDir, cfg.activeParams.Name, "chain")
	cfg.peersDbPath = filepath.Join(cfg.DataDir, cfg.activeParams.Name, "peers")

	return &cfg, remaining, nil
}
