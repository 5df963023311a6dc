package meshnet

// APP_IDX_DEV is the sentinel app_idx value meaning "use the device key"
// rather than an application key. It is never a valid stored AppKey index
// (AppKey indices are < 4096).
const APP_IDX_DEV uint16 = 0x7FFF

// KeySelector is a tagged variant replacing the app_idx == APP_IDX_DEV
// magic-integer convention internally: either an application key by index,
// or the device key. Use ResolveKeySelector to convert a raw app_idx at the
// API boundary.
type KeySelector struct {
	devKey bool
	index  int
}

// AppKeyIndex returns a KeySelector naming the application key at index.
func AppKeyIndex(index int) KeySelector {
	return KeySelector{devKey: false, index: index}
}

// DevKeySelector returns the KeySelector naming the device key.
func DevKeySelector() KeySelector {
	return KeySelector{devKey: true}
}

// IsDevKey reports whether the selector names the device key.
func (k KeySelector) IsDevKey() bool { return k.devKey }

// Index returns the application-key index. Only meaningful when
// IsDevKey() is false.
func (k KeySelector) Index() int { return k.index }

// ResolveKeySelector converts a raw app_idx, following the Bluetooth Mesh
// Profile APP_IDX_DEV convention, into a KeySelector. Returns ErrUnknownKey
// if appIdx names an application key index that does not exist in the
// network.
func ResolveKeySelector(network *MeshNetwork, appIdx uint16) (KeySelector, error) {
	if appIdx == APP_IDX_DEV {
		return DevKeySelector(), nil
	}
	if int(appIdx) >= len(network.AppKeys) {
		return KeySelector{}, ErrUnknownKey
	}
	return AppKeyIndex(int(appIdx)), nil
}
