// Package access implements the Bluetooth Mesh access layer: the first
// stage of outbound PDU construction, which validates the model-layer
// payload, resolves the encryption key for a given app_idx, derives the
// per-message (NID, EncKey, PrivacyKey) via K2, and chains into the
// transport and network layers.
package access

import (
	"github.com/backkem/meshpdu/pkg/crypto"
	"github.com/backkem/meshpdu/pkg/meshnet"
	"github.com/backkem/meshpdu/pkg/network"
	"github.com/backkem/meshpdu/pkg/transport"
)

// MinModelMessageSize and MaxModelMessageSize bound the unsegmented
// upper-transport payload (32-bit transport MIC on a 15-byte network MTU).
const (
	MinModelMessageSize = 1
	MaxModelMessageSize = 11
)

// Params bundles the per-call inputs build_network_pdu needs beyond the
// model message itself.
type Params struct {
	Network *meshnet.MeshNetwork
	AppIdx  uint16
	Seq     uint32
	Src     uint16
	Dst     uint16
	TTL     uint8
}

// Options lets callers override the spec-conformance gates of the two
// downstream layers. The zero value turns every gate off (the legacy
// layering); DefaultOptions returns the spec-conformant settings.
type Options struct {
	Transport transport.Options
	Network   network.Options
}

// DefaultOptions returns the spec-conformant options for both downstream
// layers.
func DefaultOptions() Options {
	return Options{
		Transport: transport.DefaultOptions(),
		Network:   network.DefaultOptions(),
	}
}

// Build implements build_network_pdu's first stage: validates
// model_message, resolves (net_key, crypt_key, nonce_type) from p.AppIdx,
// derives (nid, enc_key, privacy_key) via K2, then chains transport and
// network encryption. Returns the final obfuscated network PDU.
func Build(modelMessage []byte, p Params, opts Options) ([]byte, error) {
	if len(modelMessage) < MinModelMessageSize || len(modelMessage) > MaxModelMessageSize {
		return nil, meshnet.ErrPayloadTooLarge
	}
	if p.Src < meshnet.UnicastAddressMin || p.Src > meshnet.UnicastAddressMax || p.TTL > meshnet.MaxTTL {
		return nil, meshnet.ErrInvalidAddress
	}

	selector, err := meshnet.ResolveKeySelector(p.Network, p.AppIdx)
	if err != nil {
		return nil, err
	}

	var cryptKey [meshnet.KeyMaterialSize]byte
	var netKey meshnet.NetKey
	if selector.IsDevKey() {
		// Spec does not bind the device key to a particular NetKey index;
		// the primary NetKey is a reasonable default.
		cryptKey = p.Network.ProvisionerDevKey
		netKey, err = p.Network.PrimaryNetKey()
		if err != nil {
			return nil, err
		}
	} else {
		appKey := p.Network.AppKeys[selector.Index()]
		cryptKey = appKey.Key
		var ok bool
		netKey, ok = p.Network.NetKeyByIndex(appKey.BoundNetKeyIndex)
		if !ok {
			return nil, meshnet.ErrUnknownKey
		}
	}

	k2, err := crypto.K2Master(netKey.Key[:])
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(k2.EncKey[:])
	defer crypto.Zeroize(k2.PrivacyKey[:])

	transportPDU, err := transport.Build(modelMessage, transport.Params{
		Selector: selector,
		Key:      cryptKey,
		NID:      k2.NID,
		Seq:      p.Seq,
		Src:      p.Src,
		Dst:      p.Dst,
		IVIndex:  p.Network.IVIndex,
	}, opts.Transport)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(cryptKey[:])

	return network.Build(transportPDU, network.Params{
		EncKey:     k2.EncKey,
		PrivacyKey: k2.PrivacyKey,
		NID:        k2.NID,
		TTL:        p.TTL,
		Seq:        p.Seq,
		Src:        p.Src,
		IVIndex:    p.Network.IVIndex,
	}, opts.Network)
}
