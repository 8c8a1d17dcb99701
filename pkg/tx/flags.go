package tx

import (
	"sort"
)

// Symbolic flag names, scoped per transaction type.
const (
	FlagFullyCanonicalSig = "FullyCanonicalSig"

	FlagPartialPayment = "PartialPayment"
	FlagNoDirectRipple = "NoDirectRipple"
	FlagLimitQuality   = "LimitQuality"

	FlagSetAuth       = "SetAuth"
	FlagSetNoRipple   = "SetNoRipple"
	FlagClearNoRipple = "ClearNoRipple"
	FlagSetFreeze     = "SetFreeze"
	FlagClearFreeze   = "ClearFreeze"
)

// universalFlags are recognized for every transaction type.
var universalFlags = map[string]uint32{
	FlagFullyCanonicalSig: 0x80000000,
}

// flagTables maps a transaction type to its name to bit-position table.
// Immutable after package init, safe for unsynchronized concurrent reads.
var flagTables = map[string]map[string]uint32{
	TypePayment: {
		FlagNoDirectRipple: 0x00010000,
		FlagPartialPayment: 0x00020000,
		FlagLimitQuality:   0x00040000,
	},
	TypeTrustSet: {
		FlagSetAuth:       0x00010000,
		FlagSetNoRipple:   0x00020000,
		FlagClearNoRipple: 0x00040000,
		FlagSetFreeze:     0x00100000,
		FlagClearFreeze:   0x00200000,
	},
}

func flagBit(typeName, name string) (uint32, bool) {
	if bit, ok := universalFlags[name]; ok {
		return bit, true
	}
	table, ok := flagTables[typeName]
	if !ok {
		return 0, false
	}
	bit, ok := table[name]
	return bit, ok
}

// FoldFlags folds a set of symbolic names plus opaque extra bits into a
// single mask. Returns UnknownFlagNameError for a name not registered for
// the transaction type.
func FoldFlags(typeName string, names []string, extra uint32) (uint32, error) {
	mask := extra
	for _, name := range names {
		bit, ok := flagBit(typeName, name)
		if !ok {
			return 0, &UnknownFlagNameError{TypeName: typeName, Name: name}
		}
		mask |= bit
	}
	return mask, nil
}

// UnfoldFlags splits a mask into the names recognized for the transaction
// type and the remainder of unrecognized bits. Unfolding never fails, and
// FoldFlags(UnfoldFlags(mask)) reproduces mask exactly.
func UnfoldFlags(typeName string, mask uint32) ([]string, uint32) {
	names := []string{}
	remainder := mask
	take := func(table map[string]uint32) {
		for name, bit := range table {
			if mask&bit == bit && bit != 0 {
				names = append(names, name)
				remainder &^= bit
			}
		}
	}
	take(universalFlags)
	if table, ok := flagTables[typeName]; ok {
		take(table)
	}
	sort.Strings(names)
	return names, remainder
}

// FlagsField stores the active flag set of one transaction instance,
// delegating name resolution to the per-type tables.
type FlagsField struct {
	typeName string
	names    map[string]struct{}
	extra    uint32
}

// NewFlagsField declares a flags field scoped to the given transaction type.
func NewFlagsField(typeName string) FlagsField {
	return FlagsField{typeName: typeName, names: map[string]struct{}{}}
}

// Enable turns a named flag on. Unknown names fail with
// UnknownFlagNameError wrapped in a TypeValidationError.
func (f *FlagsField) Enable(name string) error {
	if _, ok := flagBit(f.typeName, name); !ok {
		return &TypeValidationError{Field: "Flags", Reason: (&UnknownFlagNameError{TypeName: f.typeName, Name: name}).Error()}
	}
	f.names[name] = struct{}{}
	return nil
}

// Disable turns a named flag off. Disabling an absent flag is a no-op.
func (f *FlagsField) Disable(name string) {
	delete(f.names, name)
}

// Enabled reports whether the named flag is active.
func (f *FlagsField) Enabled(name string) bool {
	_, ok := f.names[name]
	return ok
}

// Names returns the active flag names in sorted order.
func (f *FlagsField) Names() []string {
	names := make([]string, 0, len(f.names))
	for name := range f.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mask folds the active set and any preserved unknown bits to the wire
// integer.
func (f *FlagsField) Mask() uint32 {
	mask, err := FoldFlags(f.typeName, f.Names(), f.extra)
	if err != nil {
		// Enable validated every name, so folding cannot fail.
		panic(err)
	}
	return mask
}

// SetMask unfolds a wire integer, replacing the active set. Bits unknown
// for the type are kept and survive the next Mask call unchanged.
func (f *FlagsField) SetMask(mask uint32) {
	names, extra := UnfoldFlags(f.typeName, mask)
	f.names = make(map[string]struct{}, len(names))
	for _, name := range names {
		f.names[name] = struct{}{}
	}
	f.extra = extra
}

// ExtraBits returns the preserved unrecognized bits.
func (f *FlagsField) ExtraBits() uint32 { return f.extra }

// Empty reports whether no flag and no extra bit is set.
func (f *FlagsField) Empty() bool {
	return len(f.names) == 0 && f.extra == 0
}
