// Package netdoc loads the persisted mesh network JSON document format
// into pkg/meshnet data model values.
//
// This is a companion loader, not part of the core: pkg/provisioner and
// everything below it never import this package. JSON import/export of
// networks is an explicit non-goal of the core (spec.md §1) - it exists
// only because a realistic repo in this ecosystem ships something to feed
// the core's MeshNetwork input, and the wire schema is given explicitly.
package netdoc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/backkem/meshpdu/pkg/meshnet"
	"github.com/google/uuid"
)

// netKeyDoc mirrors one entry of the "netKeys" array.
type netKeyDoc struct {
	Refresh uint16 `json:"refresh"`
	Key     string `json:"key"`
}

// appKeyDoc mirrors one entry of the "appKeys" array.
type appKeyDoc struct {
	Key         string `json:"key"`
	BoundNetKey uint16 `json:"boundNetKey"`
}

// nodeDoc mirrors one entry of the "nodes" array.
type nodeDoc struct {
	Unicast uint16 `json:"unicast"`
	Key     string `json:"key"`
	Name    string `json:"name"`
}

// networkDoc mirrors the value under a network-UUID top-level key.
type networkDoc struct {
	Name         string      `json:"name"`
	NetKeys      []netKeyDoc `json:"netKeys"`
	AppKeys      []appKeyDoc `json:"appKeys"`
	Nodes        []nodeDoc   `json:"nodes"`
	LowerAddress uint16      `json:"lowerAddress"`
	IVIndex      uint32      `json:"ivIndex"`
	Timestamp    string      `json:"timestamp"`
}

// Load parses a persisted network document (spec.md §6) into one
// MeshNetwork per top-level UUID key. Document order is not preserved -
// JSON objects are unordered - so callers that need a specific network
// should look it up by UUID in the returned map instead of relying on
// slice position.
func Load(data []byte) (map[string]*meshnet.MeshNetwork, error) {
	var raw map[string]networkDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("netdoc: parse failed: %w", err)
	}

	result := make(map[string]*meshnet.MeshNetwork, len(raw))
	for id, doc := range raw {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("netdoc: network key %q is not a valid UUID: %w", id, err)
		}
		if doc.Timestamp != "" {
			if _, err := time.Parse(time.RFC3339, doc.Timestamp); err != nil {
				return nil, fmt.Errorf("netdoc: network %q has invalid timestamp: %w", id, err)
			}
		}

		network, err := convert(id, doc)
		if err != nil {
			return nil, fmt.Errorf("netdoc: network %q: %w", id, err)
		}
		result[id] = network
	}

	return result, nil
}

func convert(id string, doc networkDoc) (*meshnet.MeshNetwork, error) {
	network := meshnet.NewMeshNetwork(id, doc.IVIndex)

	for i, nk := range doc.NetKeys {
		key, err := decodeHex32(nk.Key)
		if err != nil {
			return nil, fmt.Errorf("netKeys[%d]: %w", i, err)
		}
		network.NetKeys = append(network.NetKeys, meshnet.NetKey{
			Index: int(nk.Refresh),
			Key:   key,
			Name:  doc.Name,
		})
	}

	for i, ak := range doc.AppKeys {
		key, err := decodeHex32(ak.Key)
		if err != nil {
			return nil, fmt.Errorf("appKeys[%d]: %w", i, err)
		}
		network.AppKeys = append(network.AppKeys, meshnet.AppKey{
			Index:            i,
			Key:              key,
			BoundNetKeyIndex: int(ak.BoundNetKey),
		})
	}

	for i, nd := range doc.Nodes {
		key, err := decodeHex32(nd.Key)
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		node := &meshnet.Node{
			UnicastAddress: nd.Unicast,
			DevKey:         key,
			Name:           nd.Name,
		}
		if err := network.Nodes().Add(node); err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
	}

	return network, nil
}

func decodeHex32(s string) ([meshnet.KeyMaterialSize]byte, error) {
	var key [meshnet.KeyMaterialSize]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != meshnet.KeyMaterialSize {
		return key, meshnet.ErrInvalidKeyMaterial
	}
	copy(key[:], b)
	return key, nil
}
