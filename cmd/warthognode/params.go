// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import "github.com/warthog-network/node/chaincfg"

// netParams groups a chaincfg.Params with the default RPC port for that
// network, mirroring the teacher's own params struct shape (one
// chaincfg.Params plus an RPC-specific addition).
type netParams struct {
	*chaincfg.Params
	rpcPort string
}

var mainNetParams = netParams{
	Params:  &chaincfg.MainNetParams,
	rpcPort: "9286",
}

var testNetParams = netParams{
	Params:  &chaincfg.TestNetParams,
	rpcPort: "19286",
}

var regNetParams = netParams{
	Params:  &chaincfg.RegNetParams,
	rpcPort: "19586",
}

// netParamsFor resolves the netParams wrapper matching a resolved
// chaincfg.Params pointer by network name, falling back to mainnet.
func netParamsFor(p *chaincfg.Params) netParams {
	switch p.Name {
	case chaincfg.TestNetParams.Name:
		return testNetParams
	case chaincfg.RegNetParams.Name:
		return regNetParams
	default:
		return mainNetParams
	}
}
