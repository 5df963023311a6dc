// Package provisioner is the top-level orchestration point for outbound
// PDU construction: it wires configuration, diagnostic logging, and
// sequence-number allocation around pkg/access's pipeline.
package provisioner

import (
	"encoding/hex"

	"github.com/backkem/meshpdu/pkg/access"
	"github.com/backkem/meshpdu/pkg/crypto"
	"github.com/backkem/meshpdu/pkg/meshnet"
	"github.com/pion/logging"
)

// LoggerFactory is the logger-construction interface diagnostic logging is
// built on. Diagnostic hex dumps are emitted on a designated debug channel
// and are not part of the contract - they must be suppressible, which a
// nil LoggerFactory (or a factory returning a no-op logger) accomplishes.
type LoggerFactory = logging.LoggerFactory

// Provisioner builds outbound network PDUs for one MeshNetwork.
type Provisioner struct {
	network *meshnet.MeshNetwork
	config  Config
	log     logging.LeveledLogger
}

// New creates a Provisioner bound to network, validating and defaulting
// config.
func New(network *meshnet.MeshNetwork, config Config) (*Provisioner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	p := &Provisioner{network: network, config: config}
	if config.LoggerFactory != nil {
		p.log = config.LoggerFactory.NewLogger("provisioner")
	}
	return p, nil
}

// SendParams bundles the inputs for Send - everything build_network_pdu
// needs except seq, which Send allocates automatically.
type SendParams struct {
	AppIdx uint16
	Src    uint16
	Dst    uint16
	TTL    uint8
}

// BuildNetworkPDU is the low-level operation matching spec.md §4.2's
// build_network_pdu signature exactly: the caller supplies seq.
func (p *Provisioner) BuildNetworkPDU(modelMessage []byte, params SendParams, seq uint32) ([]byte, error) {
	pdu, err := access.Build(modelMessage, access.Params{
		Network: p.network,
		AppIdx:  params.AppIdx,
		Seq:     seq,
		Src:     params.Src,
		Dst:     params.Dst,
		TTL:     params.TTL,
	}, p.config.Options)

	if p.log != nil {
		keyFP := p.keyFingerprint(params.AppIdx)
		if err != nil {
			p.log.Debugf("build_network_pdu failed: seq=%d src=%#04x dst=%#04x key=%s err=%v", seq, params.Src, params.Dst, keyFP, err)
		} else {
			p.log.Debugf("build_network_pdu: seq=%d src=%#04x dst=%#04x key=%s pdu=%s", seq, params.Src, params.Dst, keyFP, hex.EncodeToString(pdu))
		}
	}

	return pdu, err
}

// keyFingerprint resolves appIdx against the bound network and returns a
// diagnostic, non-reversible tag for the key that would be used, in place
// of logging the key itself. Returns "?" if appIdx does not resolve.
func (p *Provisioner) keyFingerprint(appIdx uint16) string {
	selector, err := meshnet.ResolveKeySelector(p.network, appIdx)
	if err != nil {
		return "?"
	}
	if selector.IsDevKey() {
		return crypto.KeyFingerprint(p.network.ProvisionerDevKey[:])
	}
	return crypto.KeyFingerprint(p.network.AppKeys[selector.Index()].Key[:])
}

// Send is a convenience wrapper that allocates seq automatically via
// MeshNetwork.NextSequence before calling BuildNetworkPDU, for callers
// that don't need manual sequence control.
func (p *Provisioner) Send(modelMessage []byte, params SendParams) ([]byte, error) {
	seq, err := p.network.NextSequence()
	if err != nil {
		return nil, err
	}
	return p.BuildNetworkPDU(modelMessage, params, seq)
}
